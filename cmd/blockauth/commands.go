package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	transport "github.com/SNO7E-G/Blockchain-Based-Authentication/transport/http"
)

func serveCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP authentication facade",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer a.close()

			if identity, ok := a.svc.RestoreSession(); ok {
				log.WithField("username", identity.Username).Info("restored session")
			}

			router := transport.SetupRouter(a.svc, a.issuer)
			log.WithField("addr", a.cfg.ListenAddr).Info("listening")
			return router.Run(a.cfg.ListenAddr)
		},
	}
}

func registerCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Register the wallet account on the ledger and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer a.close()

			identity, err := a.svc.Register(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("registered and authenticated as %s (%s)\n", identity.Username, identity.Address.Hex())
			return nil
		},
	}
}

func loginCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate with the wallet and store a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer a.close()

			username := ""
			if len(args) == 1 {
				username = args[0]
			}

			identity, err := a.svc.Authenticate(cmd.Context(), username)
			if err != nil {
				return err
			}
			fmt.Printf("authenticated as %s (%s)\n", identity.Username, identity.Address.Hex())
			return nil
		},
	}
}

func statusCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer a.close()

			identity, ok := a.svc.RestoreSession()
			if !ok {
				fmt.Println("not authenticated")
				return nil
			}
			fmt.Printf("authenticated as %s (%s)\n", identity.Username, identity.Address.Hex())
			return nil
		},
	}
}

func logoutCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer a.close()

			if _, ok := a.svc.RestoreSession(); !ok {
				fmt.Println("no session to clear")
				return nil
			}
			if err := a.svc.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}
