package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/BhavyaPagadala/urbix/internal/users"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage citizen and administrator accounts",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a citizen account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserCreate(cmd, args[0], false)
	},
}

var userProvisionCmd = &cobra.Command{
	Use:   "provision <username>",
	Short: "Create an account with any role, including admin",
	Long:  `Creates an account directly in the user directory. This is the only way to create administrator accounts.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserCreate(cmd, args[0], true)
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Check a username and password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserLogin,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runUserList,
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userProvisionCmd} {
		c.Flags().String("password", "", "Password (prompted when empty)")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("phone", "", "Phone number")
	}
	userProvisionCmd.Flags().String("role", "citizen", "Role: citizen or admin")
	userLoginCmd.Flags().String("password", "", "Password (prompted when empty)")

	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userProvisionCmd)
	userCmd.AddCommand(userLoginCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}

// passwordFlag returns --password or prompts for it with masked input.
func passwordFlag(cmd *cobra.Command) (string, error) {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw, nil
	}
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}
	pw, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return pw, nil
}

func runUserCreate(cmd *cobra.Command, username string, provision bool) error {
	password, err := passwordFlag(cmd)
	if err != nil {
		return err
	}
	reg := users.Registration{Username: username, Password: password}
	reg.Email, _ = cmd.Flags().GetString("email")
	reg.Phone, _ = cmd.Flags().GetString("phone")

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var u users.User
	if provision {
		reg.Role, _ = cmd.Flags().GetString("role")
		u, err = a.users.Provision(ctx, reg)
	} else {
		u, err = a.users.Register(ctx, reg)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created %s account %s.\n", u.Role, u.Username)
	return nil
}

func runUserLogin(cmd *cobra.Command, args []string) error {
	password, err := passwordFlag(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.users.Authenticate(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s).\n", u.Username, u.Role)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No accounts yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tEMAIL\tCREATED")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Username, u.Role, u.Email, u.CreatedAt.In(a.loc).Format("2006-01-02"))
	}
	return w.Flush()
}
