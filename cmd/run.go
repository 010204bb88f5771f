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
	"github.com/spf13/viper"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/InputParameters"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/sim"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [maxLevel n OhK J Bond tmax]",
	Short: "Run the bursting bubble simulation",
	Long: `
Run the axisymmetric bursting bubble simulation. Parameters come from, in
increasing priority: built-in defaults, a YAML parameters file, the six
positional arguments of the original driver, and individual flags.

burstingbubble run 10 0.4 0.001 0.2 1.1 2.5`,
	Args: cobra.RangeArgs(0, 6),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip := InputParameters.NewSimulationParameters()

		if pf, _ := cmd.Flags().GetString("paramsFile"); len(pf) != 0 {
			if err := applyConfigFile(ip, pf); err != nil {
				return err
			}
		} else if cf := viper.ConfigFileUsed(); len(cf) != 0 {
			if err := applyConfigFile(ip, cf); err != nil {
				return err
			}
		}
		if err := applyPositional(ip, args); err != nil {
			return err
		}
		applyFlagOverrides(cmd, ip)

		verbose, _ := cmd.Flags().GetBool("verbose")
		s, err := sim.NewSimulation(ip, verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
			os.Exit(1)
		}
		reason, err := s.Run()
		if err != nil {
			return err
		}
		if verbose {
			fmt.Printf("Run finished: %s at t = %g after %d iterations\n",
				reason, s.Time, s.Iteration)
		}
		return nil
	},
}

// applyConfigFile overlays the parameters found in a YAML file, either the
// explicit -I file or the config viper discovered, onto the defaults.
func applyConfigFile(ip *InputParameters.SimulationParameters, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("unable to read parameters file %s: %w", filename, err)
	}
	if err = ip.Parse(data); err != nil {
		return fmt.Errorf("unable to parse parameters file %s: %w", filename, err)
	}
	return nil
}

func applyPositional(ip *InputParameters.SimulationParameters, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) != 6 {
		return fmt.Errorf("need 6 positional arguments (maxLevel n OhK J Bond tmax), have %d", len(args))
	}
	var err error
	if ip.MaxLevel, err = strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("bad maxLevel %q: %w", args[0], err)
	}
	vals := [5]*float64{&ip.PowerLawIndex, &ip.OhK, &ip.J, &ip.Bond, &ip.FinalTime}
	for k, dst := range vals {
		if *dst, err = strconv.ParseFloat(args[k+1], 64); err != nil {
			return fmt.Errorf("bad argument %q: %w", args[k+1], err)
		}
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, ip *InputParameters.SimulationParameters) {
	if cmd.Flags().Changed("maxLevel") {
		ip.MaxLevel, _ = cmd.Flags().GetInt("maxLevel")
	}
	if cmd.Flags().Changed("finalTime") {
		ip.FinalTime, _ = cmd.Flags().GetFloat64("finalTime")
	}
	if cmd.Flags().Changed("CFL") {
		ip.CFL, _ = cmd.Flags().GetFloat64("CFL")
	}
	if cmd.Flags().Changed("maxIterations") {
		ip.MaxIterations, _ = cmd.Flags().GetInt("maxIterations")
	}
	if cmd.Flags().Changed("procLimit") {
		ip.ProcLimit, _ = cmd.Flags().GetInt("procLimit")
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("paramsFile", "I", "", "YAML simulation parameters file")
	runCmd.Flags().IntP("maxLevel", "l", 10, "maximum adaptive refinement level")
	runCmd.Flags().Float64P("finalTime", "t", 2.5, "target end time for the simulation")
	runCmd.Flags().Float64("CFL", 0.1, "CFL - increase for speedup, decrease for stability")
	runCmd.Flags().Int("maxIterations", 0, "stop after this many iterations (0 = no cap)")
	runCmd.Flags().Int("procLimit", 0, "number of go routines for cell sweeps (0 = NumCPU)")
	runCmd.Flags().BoolP("verbose", "v", true, "print run progress")
}
