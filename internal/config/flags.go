package config

import (
	"github.com/spf13/pflag"
)

// parses server flags from args (normally os.Args[1:])
func ParseServerFlags(args []string) (Flags, error) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)

	var f Flags
	fs.StringVarP(&f.Port, "port", "p", "", "port to listen on (overrides PORT)")
	fs.StringVar(&f.EnvFile, "env-file", "", "path to a .env file")
	fs.StringVar(&f.RemoteActionURL, "remote-action-url", "", "base URL of the remote agent (overrides REMOTE_ACTION_URL)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return f, nil
}

// parses flags for the terminal client
func ParseClientFlags(args []string) (ClientFlags, error) {
	fs := pflag.NewFlagSet("tui", pflag.ContinueOnError)

	f := ClientFlags{ServerURL: "http://localhost:" + DefaultPort}
	fs.StringVarP(&f.ServerURL, "server", "s", f.ServerURL, "server base URL")
	fs.StringVar(&f.SessionID, "session", "", "join an existing session instead of creating one")

	if err := fs.Parse(args); err != nil {
		return ClientFlags{}, err
	}

	return f, nil
}
