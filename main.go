package main

import (
	"context"
	"os"

	"github.com/spf13/viper"

	"github.com/iburimskiy/window-sync/internal/cli"
)

var version = "dev"

func main() {
	cmd := cli.NewRootCmd(viper.New(), version)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
