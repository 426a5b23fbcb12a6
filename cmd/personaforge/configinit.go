package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	pfConfig "github.com/soundprediction/personaforge/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .personaforge.yaml with every default",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".personaforge.yaml")
		}
		if err := pfConfig.WriteStarter(path); err != nil {
			return err
		}
		fmt.Println("Wrote starter config to", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().String("path", "", "Destination path (default $HOME/.personaforge.yaml)")
}
