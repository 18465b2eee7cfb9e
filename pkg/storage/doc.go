// Package storage persists run results for the feed scraper.
//
// The Manager type writes one JSON file per run into an output directory:
//   - the directory is created when missing
//   - files are named tweets-<UTC timestamp>.json unless a name is given
//   - writes go to a temporary file that is renamed into place
//   - unsupported formats fail before anything is written
//
// Usage:
//
//	manager := storage.NewManager("./output", "json", log)
//	path, err := manager.Save(result, "")
//	if err != nil {
//	    return err
//	}
package storage
