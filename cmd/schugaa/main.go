package main

import (
	"fmt"
	"os"

	"github.com/schugaa/schugaa/internal/client"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	c := &cobra.Command{
		Use:     "schugaa",
		Short:   "LibreLinkUp glucose client",
		Version: fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:    cobra.NoArgs,
	}
	c.AddCommand(loginCmd)
	c.AddCommand(logoutCmd)
	c.AddCommand(fetchCmd)
	c.AddCommand(watchCmd)

	fetchCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the reading as JSON")
	watchCmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Expose prometheus metrics on this address")

	if err := c.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	jsonOut       bool
	metricsListen string

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Login to LibreLinkUp and store the credentials",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Login()
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credentials and session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Logout()
		},
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the latest glucose reading once",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Fetch(jsonOut)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Poll for readings until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Watch(metricsListen)
		},
	}
)
