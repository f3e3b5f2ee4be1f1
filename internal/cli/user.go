package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mpavel/homescreen/internal/auth"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard accounts",
	}
	cmd.AddCommand(newUserListCmd(), newUserRegisterCmd(), newUserDeleteCmd())
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := servicesFromFlags(cmd)
			if err != nil {
				return err
			}
			names, err := svc.auth.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				cmd.Println("No accounts registered.")
				return nil
			}
			for _, n := range names {
				cmd.Println(n)
			}
			return nil
		},
	}
}

func newUserRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := servicesFromFlags(cmd)
			if err != nil {
				return err
			}
			pin, _ := cmd.Flags().GetString("pin")
			if pin == "" {
				if pin, err = promptPin(cmd); err != nil {
					return err
				}
			}
			if err := svc.auth.Register(args[0], pin); err != nil {
				return err
			}
			cmd.Printf("Registered %q.\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("pin", "", "account PIN (prompted when omitted)")
	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an account with its settings and cached data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := servicesFromFlags(cmd)
			if err != nil {
				return err
			}
			if _, err := svc.session.Delete(args[0]); err != nil {
				if errors.Is(err, auth.ErrNotFound) {
					return fmt.Errorf("no account named %q", args[0])
				}
				return err
			}
			cmd.Printf("Deleted %q.\n", args[0])
			return nil
		},
	}
}

// promptPin reads the PIN from the terminal without echo, with a confirm
// pass. Non-interactive callers must pass --pin instead.
func promptPin(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; pass --pin")
	}

	cmd.Print("PIN: ")
	first, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", err
	}
	cmd.Print("Confirm PIN: ")
	second, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("PINs do not match")
	}
	pin := strings.TrimSpace(string(first))
	if pin == "" {
		return "", errors.New("PIN must not be empty")
	}
	return pin, nil
}
