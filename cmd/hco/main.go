package main

import (
	"fmt"
	"os"

	"github.com/humanityclub/hco-backend/cmd/hco/cli"
)

// Set via -ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// @title                       HCO Backend API
// @version                     1.0
// @description                 Administrator session API of the HCO site backend.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
