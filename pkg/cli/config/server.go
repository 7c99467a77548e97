package config

import "github.com/urfave/cli/v3"

// Server holds configuration of the fake SW360 server
type Server struct {
	Addr  string
	Token string `masq:"secret"`
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8360",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("SW360CTL_MOCK_ADDR"),
		},
		&cli.StringFlag{
			Name:        "mock-token",
			Usage:       "Token the fake server requires (empty accepts any request)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SW360CTL_MOCK_TOKEN"),
		},
	}
}
