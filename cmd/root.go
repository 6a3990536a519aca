/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/inp2feap/config"
	"github.com/notargets/inp2feap/converter"
	"github.com/notargets/inp2feap/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inp2feap [conversion config file]",
	Short: "Convert finite element models from Abaqus .inp format to FEAP input files",
	Long: `
Converts a finite element mesh in the Abaqus .inp format into a FEAP input
file. The conversion is controlled completely by a configuration file
(YAML or JSON) given as the single argument, which names the .inp file to
read, the output file, and how the mesh is processed: material numbers and
element duplication per element set, boundary and load cards per node set,
custom input blocks, header/footer files, and optional mesh centering.

inp2feap shells.json`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbosity")
		logging.SetupLogger(verbosity)

		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}

		confFile := ""
		if len(args) > 0 {
			confFile = args[0]
		} else if confFile = promptConfigFile(); confFile == "" {
			return fmt.Errorf("no conversion config file given")
		}

		cfg, err := config.Load(confFile)
		if err != nil {
			return err
		}
		return converter.Run(cfg)
	},
}

// promptConfigFile asks for the config file path interactively when it was
// not passed on the command line.
func promptConfigFile() string {
	fmt.Print("Input file: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.inp2feap.yaml)")
	rootCmd.Flags().CountP("verbosity", "v", "increase logging verbosity, repeatable")
	rootCmd.Flags().Bool("profile", false, "write a CPU profile of the run to the current directory")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".inp2feap" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".inp2feap")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
