// Sabridge redirects a TaiSEIA smart appliance's serial protocol to a
// TCP/IP connection and vice versa.
//
// It opens the appliance's serial port, frames and decodes the device's
// binary PDUs, and serves a small text command protocol to one network
// client at a time: register, states, read/write by command name, or a
// raw six-byte frame for diagnostics.
//
// Usage:
//
//	sabridge serve --port /dev/ttyUSB0 --type-id 4 [flags]
//
// See 'sabridge serve --help' for available options.
//
// Note: no security measures are implemented. Anyone who can reach the
// listen port can control the appliance.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/sabridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sabridge",
	Short: "TaiSEIA Smart Appliance Serial to TCP Bridge",
	Long: `A serial to network (TCP/IP) redirector for TaiSEIA smart appliances.

The bridge speaks the appliance's self-delimited binary frame protocol on
the serial side and a line-oriented text protocol on the network side.
Exactly one client connection is served at a time; when it terminates the
bridge waits for the next connect (server role) or redials (client role).`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sabridge %s\n", version.Full())
	},
}
