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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/InputParameters"
)

func TestApplyConfigFile(t *testing.T) {
	cf := filepath.Join(t.TempDir(), ".burstingbubble.yaml")
	require.NoError(t, os.WriteFile(cf,
		[]byte("MaxLevel: 8\nBond: 2.5\nSnapshotInterval: 0.05\n"), 0644))

	ip := InputParameters.NewSimulationParameters()
	require.NoError(t, applyConfigFile(ip, cf))
	// Overlaid keys win, untouched keys keep their defaults
	assert.Equal(t, 8, ip.MaxLevel)
	assert.Equal(t, 2.5, ip.Bond)
	assert.Equal(t, 0.05, ip.SnapshotInterval)
	assert.Equal(t, 0.4, ip.PowerLawIndex)
	assert.Equal(t, 2.5, ip.FinalTime)
}

func TestApplyConfigFileErrors(t *testing.T) {
	ip := InputParameters.NewSimulationParameters()
	err := applyConfigFile(ip, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read parameters file")

	cf := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cf, []byte("MaxLevel: [not an int\n"), 0644))
	err = applyConfigFile(ip, cf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse parameters file")
}

func TestApplyPositional(t *testing.T) {
	ip := InputParameters.NewSimulationParameters()
	require.NoError(t, applyPositional(ip,
		[]string{"11", "0.5", "0.002", "0.3", "1.2", "3.0"}))
	assert.Equal(t, 11, ip.MaxLevel)
	assert.Equal(t, 0.5, ip.PowerLawIndex)
	assert.Equal(t, 0.002, ip.OhK)
	assert.Equal(t, 0.3, ip.J)
	assert.Equal(t, 1.2, ip.Bond)
	assert.Equal(t, 3.0, ip.FinalTime)

	assert.NoError(t, applyPositional(ip, nil))
	assert.Error(t, applyPositional(ip, []string{"10", "0.4"}))
	assert.Error(t, applyPositional(ip, []string{"ten", "0.4", "0.001", "0.2", "1.1", "2.5"}))
}
