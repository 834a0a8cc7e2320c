package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/roompush/push"
)

var vapidCmd = &cobra.Command{
	Use:   "vapid-keys",
	Short: "Generate a VAPID key pair for PUBLIC_VAPID_KEY / PRIVATE_VAPID_KEY",
	RunE: func(cmd *cobra.Command, args []string) error {
		public, private, err := push.GenerateVAPIDKeys()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PUBLIC_VAPID_KEY=%s\nPRIVATE_VAPID_KEY=%s\n", public, private)
		return nil
	},
}
