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
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/postprocess"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract filename xmin ymin xmax ymax ny",
	Short: "Extract strain-rate and velocity fields from a snapshot",
	Long: `
Restore a simulation snapshot and sample the log-scaled strain-rate invariant
and the velocity magnitude onto a regular grid over a window of interest, one
"x y D2c vel" row per grid point.

burstingbubble extract intermediate/snapshot-0.5000 -2 0 2 2 512`,
	Args: cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			window [4]float64
			err    error
		)
		for k := range window {
			if window[k], err = strconv.ParseFloat(args[k+1], 64); err != nil {
				return fmt.Errorf("bad coordinate %q: %w", args[k+1], err)
			}
		}
		ny, err := strconv.Atoi(args[5])
		if err != nil {
			return fmt.Errorf("bad ny %q: %w", args[5], err)
		}
		out := os.Stdout
		if name, _ := cmd.Flags().GetString("output"); len(name) != 0 {
			if out, err = os.Create(name); err != nil {
				return err
			}
			defer out.Close()
		}
		return postprocess.Extract(args[0], window[0], window[1], window[2], window[3], ny, out)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
