package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file or the command line. The four
// dimensionless groups (PowerLawIndex, OhK, J, Bond) and MaxLevel/FinalTime
// mirror the positional invocation `run maxLevel n OhK J Bond tmax`.
type SimulationParameters struct {
	Title            string  `yaml:"Title"`
	MaxLevel         int     `yaml:"MaxLevel"`
	BaseLevel        int     `yaml:"BaseLevel"`
	PowerLawIndex    float64 `yaml:"PowerLawIndex"`
	OhK              float64 `yaml:"OhK"`
	J                float64 `yaml:"J"`
	Bond             float64 `yaml:"Bond"`
	FinalTime        float64 `yaml:"FinalTime"`
	SnapshotInterval float64 `yaml:"SnapshotInterval"`
	Epsilon          float64 `yaml:"Epsilon"`
	CFL              float64 `yaml:"CFL"`
	DomainSize       float64 `yaml:"DomainSize"`
	FErr             float64 `yaml:"FErr"`
	VelErr           float64 `yaml:"VelErr"`
	D2Err            float64 `yaml:"D2Err"`
	KErr             float64 `yaml:"KErr"`
	MaxIterations    int     `yaml:"MaxIterations"`
	ProcLimit        int     `yaml:"ProcLimit"`
	DumpFile         string  `yaml:"DumpFile"`
	LogFile          string  `yaml:"LogFile"`
	SnapshotDir      string  `yaml:"SnapshotDir"`
}

// NewSimulationParameters returns the production defaults: the n=0.4,
// OhK=1e-3, J=0.2, Bo=1.1 bursting-bubble case at maximum level 10.
func NewSimulationParameters() *SimulationParameters {
	return &SimulationParameters{
		Title:            "Bursting Bubble in Herschel-Bulkley Medium",
		MaxLevel:         10,
		BaseLevel:        5,
		PowerLawIndex:    0.4,
		OhK:              1e-3,
		J:                2e-1,
		Bond:             1.1,
		FinalTime:        2.5,
		SnapshotInterval: 1e-2,
		Epsilon:          1e-2,
		CFL:              1e-1,
		DomainSize:       8,
		FErr:             1e-3,
		VelErr:           1e-3,
		D2Err:            1e-2,
		KErr:             1e-6,
		DumpFile:         "restart",
		LogFile:          "logData.dat",
		SnapshotDir:      "intermediate",
	}
}

func (ip *SimulationParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *SimulationParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= MaxLevel\n", ip.MaxLevel)
	fmt.Printf("%8.5f\t\t= PowerLawIndex\n", ip.PowerLawIndex)
	fmt.Printf("%8.5f\t\t= OhK\n", ip.OhK)
	fmt.Printf("%8.5f\t\t= J\n", ip.J)
	fmt.Printf("%8.5f\t\t= Bond\n", ip.Bond)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= Epsilon\n", ip.Epsilon)
	fmt.Printf("[%g %g %g %g]\t= Error tolerances (f, vel, D2, curvature)\n",
		ip.FErr, ip.VelErr, ip.D2Err, ip.KErr)
}
