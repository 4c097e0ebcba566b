package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:          "blockauth",
		Short:        "Wallet-based authentication against the on-chain registry",
		SilenceUsage: true,
	}

	root.AddCommand(
		serveCmd(log),
		registerCmd(log),
		loginCmd(log),
		statusCmd(log),
		logoutCmd(log),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
