package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"feedscraper/pkg/auth"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var useOAuth bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Twitter credentials",
	Long: `Manage stored Twitter credentials.

Credentials are stored in the system keychain when available, otherwise in
an encrypted file under the user config directory. TWITTER_* environment
variables are read as a last resort.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store Twitter credentials securely",
	Example: `  # Username and password, optional email and 2FA secret
  feedscraper auth login mybot

  # OAuth 1.0a app credentials
  feedscraper auth login mybot --oauth`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout <username>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	loginCmd.Flags().BoolVar(&useOAuth, "oauth", false, "store OAuth 1.0a keys instead of a password")
}

// prompter reads answers from stdin, hiding secrets on a terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter() *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	input, err := p.in.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

func (p *prompter) secret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(value)), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	p := newPrompter()
	account := &auth.Account{}
	if len(args) > 0 {
		account.Username = args[0]
	} else if account.Username, err = p.line("Twitter username"); err != nil {
		return err
	}

	if existing, _ := manager.Retrieve(account.Username); existing != nil {
		answer, _ := p.line(fmt.Sprintf("Account '%s' already exists. Update credentials? (y/N)", account.Username))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Println("\nSecrets are hidden as you type.")
	if useOAuth {
		fields := []struct {
			label string
			dst   *string
		}{
			{"API key", &account.APIKey},
			{"API secret key", &account.APISecretKey},
			{"Access token", &account.AccessToken},
			{"Access token secret", &account.AccessTokenSecret},
		}
		for _, f := range fields {
			if *f.dst, err = p.secret(f.label); err != nil {
				return err
			}
		}
	} else {
		if account.Password, err = p.secret("Password"); err != nil {
			return err
		}
		if account.Email, err = p.line("Email (optional, used for verification)"); err != nil {
			return err
		}
		if account.TwoFactorSecret, err = p.secret("2FA secret (optional, base32)"); err != nil {
			return err
		}
	}

	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		return err
	}
	ui.PrintSuccess("Account saved: " + account.Username)
	fmt.Println("\nRun 'feedscraper scrape --account " + account.Username + "' to use it.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	if err := manager.Delete(args[0]); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		return err
	}
	ui.PrintSuccess("Account removed: " + args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		return err
	}
	if len(accounts) == 0 {
		ui.PrintWarning("No stored accounts")
		fmt.Println()
		auth.ShowCredentialGuide(os.Stdout)
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()
	for i, account := range accounts {
		s := auth.SanitizeAccount(account)
		fmt.Printf("%d. Username: %s\n", i+1, s.Username)
		if s.Password != "" {
			fmt.Printf("   Password: %s\n", s.Password)
		}
		if s.Email != "" {
			fmt.Printf("   Email: %s\n", s.Email)
		}
		if s.TwoFactorSecret != "" {
			fmt.Printf("   2FA secret: %s\n", s.TwoFactorSecret)
		}
		if s.APIKey != "" {
			fmt.Printf("   API key: %s\n", s.APIKey)
			fmt.Printf("   Access token: %s\n", s.AccessToken)
		}
		fmt.Printf("   Last Modified: %s\n\n", s.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}
