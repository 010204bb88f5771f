package sim

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/InputParameters"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/adapt"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/geometry"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/readfiles"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/rheology"
)

// StopReason is the terminal state of a run. The two energy guards are
// deliberate, logged terminations and not failures.
type StopReason int

const (
	RunToCompletion StopReason = iota
	EnergyBlowup
	EnergyVanished
)

func (r StopReason) String() string {
	switch r {
	case EnergyBlowup:
		return "kinetic energy blowup"
	case EnergyVanished:
		return "kinetic energy vanished"
	}
	return "completed"
}

// Kinetic-energy guard thresholds. The guards are armed only after
// guardMinIterations steps so startup transients cannot trip them.
const (
	keCeiling          = 1e2
	keFloor            = 1e-6
	guardMinIterations = 10
)

type Simulation struct {
	IP     *InputParameters.SimulationParameters
	MP     rheology.MaterialParameters
	Tree   *grid.Tree
	Policy *adapt.Policy
	Solver Solver

	Time      float64
	Iteration int

	logFile  *os.File
	nextSnap float64
	Verbose  bool
}

// NewSimulation builds the run from its parameters: material properties,
// refinement policy, solver, and the initial state, restored from the dump
// file when present and otherwise built from the initial shape file.
func NewSimulation(ip *InputParameters.SimulationParameters, verbose bool) (s *Simulation, err error) {
	s = &Simulation{
		IP:      ip,
		MP:      rheology.NewMaterialParameters(ip.PowerLawIndex, ip.OhK, ip.J, ip.Bond),
		Verbose: verbose,
	}
	if ip.Epsilon > 0 {
		s.MP.Epsilon = ip.Epsilon
	}
	s.Policy = adapt.NewPolicy([]adapt.Criterion{
		{Name: FieldNames[F], Field: F, Tolerance: ip.FErr},
		{Name: FieldNames[Ux], Field: Ux, Tolerance: ip.VelErr},
		{Name: FieldNames[Uy], Field: Uy, Tolerance: ip.VelErr},
		{Name: FieldNames[D2], Field: D2, Tolerance: ip.D2Err},
		{Name: FieldNames[Kappa], Field: Kappa, Tolerance: ip.KErr},
	}, ip.MaxLevel)
	s.Solver = NewExplicitSolver(ip.CFL, ip.ProcLimit)

	if tree, t0, i0, rerr := grid.Restore(ip.DumpFile); rerr == nil {
		if verbose {
			fmt.Printf("Restored from dump file %s at t = %g, i = %d\n", ip.DumpFile, t0, i0)
		}
		s.Tree = tree
		s.Time = t0
		s.Iteration = i0
		s.nextSnap = snapAfter(t0, ip.SnapshotInterval)
		return s, nil
	}
	fmt.Fprintf(os.Stderr, "Cannot restore from a dump file!\n")
	if err = s.initFromShape(); err != nil {
		return nil, err
	}
	return s, nil
}

// initFromShape loads the initial bubble-cavity boundary, builds the signed
// distance field and refines adaptively on (interface, distance) until the
// tree stops changing, then initializes the volume fraction from the
// distance at each cell.
func (s *Simulation) initFromShape() error {
	ip := s.IP
	filename := fmt.Sprintf("Bo%5.4f-buggy_fixed.dat", ip.Bond)
	shape, err := readfiles.ReadShape(filename, s.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "There is no file named %s\n", filename)
		parent := filepath.Join("..", filename)
		if shape, err = readfiles.ReadShape(parent, s.Verbose); err != nil {
			fmt.Fprintf(os.Stderr, "There is no file named %s\n", parent)
			return fmt.Errorf("no restart dump and no initial shape file for Bond = %g", ip.Bond)
		}
	}

	t := grid.NewTree(NumFields, ip.BaseLevel, ip.DomainSize, -ip.DomainSize/2, 0)
	t.AxisOdd[Uy] = true
	s.Tree = t

	fillInterface(t, shape)
	// Refine on the interface fields until convergence so the initial
	// condition is resolved at the maximum level.
	initPolicy := adapt.NewPolicy([]adapt.Criterion{
		{Name: FieldNames[F], Field: F, Tolerance: 1e-8},
		{Name: FieldNames[Dist], Field: Dist, Tolerance: 1e-8},
	}, ip.MaxLevel)
	initPolicy.MinLevel = ip.BaseLevel
	for {
		nRefined, _ := initPolicy.Apply(t)
		if nRefined == 0 {
			break
		}
		fillInterface(t, shape)
	}
	if s.Verbose {
		fmt.Printf("Initialized interface on %d leaf cells, deepest level %d\n",
			len(t.Leaves()), t.MaxLeafLevel())
	}
	return nil
}

// fillInterface recomputes the signed distance and the volume fraction
// exactly from the shape polyline at every leaf. The fraction is the linear
// approximation of the cell area where the distance is negative (inside the
// liquid), sharp over one cell width.
func fillInterface(t *grid.Tree, shape *geometry.Polyline) {
	for _, c := range t.Leaves() {
		x, y := t.CellCenter(c)
		d := shape.SignedDistance(x, y)
		c.Val[Dist] = d
		c.Val[F] = rheology.Clamp(0.5-d/t.Delta(c.Level), 0, 1)
	}
	t.Restrict()
}

// Run executes the iteration loop until the final time, the iteration cap,
// or an energy guard. Guard stops dump a final checkpoint and are reported
// as terminal states, not errors.
func (s *Simulation) Run() (reason StopReason, err error) {
	ip := s.IP
	if err = os.MkdirAll(ip.SnapshotDir, 0755); err != nil {
		return
	}
	if s.logFile, err = os.OpenFile(ip.LogFile,
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		return
	}
	defer s.logFile.Close()

	s.PrintInitialization()
	start := time.Now()

	if s.Iteration == 0 {
		s.logHeader()
		s.logLine(0, KineticEnergy(s.Tree, s.MP, ip.ProcLimit))
	}
	if err = s.writeSnapshots(); err != nil {
		return
	}

	for s.Time < ip.FinalTime {
		if ip.MaxIterations > 0 && s.Iteration >= ip.MaxIterations {
			break
		}
		dt := s.Solver.Advance(s.Tree, s.MP, ip.FinalTime-s.Time)
		s.Time += dt
		s.Iteration++

		UpdateCurvature(s.Tree, ip.ProcLimit)
		s.Policy.Apply(s.Tree)

		ke := KineticEnergy(s.Tree, s.MP, ip.ProcLimit)
		s.logLine(dt, ke)

		if ke < -1e-10 {
			err = fmt.Errorf("negative kinetic energy %g at iteration %d", ke, s.Iteration)
			return
		}
		if ke > keCeiling && s.Iteration > guardMinIterations {
			s.logMessage("The kinetic energy blew up. Stopping simulation\n")
			s.dump(ip.DumpFile)
			return EnergyBlowup, nil
		}
		if ke < keFloor && s.Iteration > guardMinIterations {
			s.logMessage("Kinetic energy too small now! Stopping!\n")
			s.dump(ip.DumpFile)
			return EnergyVanished, nil
		}
		if err = s.writeSnapshots(); err != nil {
			return
		}
	}
	s.dump(ip.DumpFile)
	s.PrintFinal(time.Since(start))
	return RunToCompletion, nil
}

// writeSnapshots refreshes the restart dump and writes a timestamped
// snapshot whenever the clock crosses the snapshot cadence.
func (s *Simulation) writeSnapshots() error {
	ip := s.IP
	if ip.SnapshotInterval <= 0 {
		return nil
	}
	for s.Time >= s.nextSnap {
		if err := s.dump(ip.DumpFile); err != nil {
			return err
		}
		name := filepath.Join(ip.SnapshotDir, fmt.Sprintf("snapshot-%5.4f", s.nextSnap))
		if err := s.dump(name); err != nil {
			return err
		}
		s.nextSnap += ip.SnapshotInterval
	}
	return nil
}

func (s *Simulation) dump(filename string) error {
	return s.Tree.Dump(filename, s.Time, s.Iteration)
}

// snapAfter is the first snapshot time strictly after t. A non-positive
// cadence disables snapshots, so no next time exists.
func snapAfter(t, tsnap float64) (next float64) {
	if tsnap <= 0 {
		return math.Inf(1)
	}
	for next <= t {
		next += tsnap
	}
	return
}

func (s *Simulation) paramSummary() string {
	return fmt.Sprintf("Level %d, n %2.1e, OhK %2.1e, Oha %2.1e, J %4.3f, Bo %4.3f\n",
		s.IP.MaxLevel, s.MP.N, s.MP.OhK, s.MP.Oha, s.MP.J, s.MP.Bond)
}

func (s *Simulation) logHeader() {
	s.logMessage(s.paramSummary())
	s.logMessage("i dt t ke\n")
}

func (s *Simulation) logLine(dt, ke float64) {
	s.logMessage(fmt.Sprintf("%d %g %g %g\n", s.Iteration, dt, s.Time, ke))
}

// logMessage mirrors every log record to the error stream and the log file,
// the way the production runs are monitored.
func (s *Simulation) logMessage(msg string) {
	fmt.Fprint(os.Stderr, msg)
	if s.logFile != nil {
		fmt.Fprint(s.logFile, msg)
	}
}

func (s *Simulation) PrintInitialization() {
	if !s.Verbose {
		return
	}
	fmt.Printf("Bursting bubble in a Herschel-Bulkley medium, axisymmetric\n")
	s.IP.Print()
	fmt.Printf("Starting at t = %g, i = %d with %d leaf cells\n\n",
		s.Time, s.Iteration, len(s.Tree.Leaves()))
}

func (s *Simulation) PrintFinal(elapsed time.Duration) {
	fmt.Fprint(os.Stderr, s.paramSummary())
	if s.Verbose {
		fmt.Printf("Time stepping took %8.5f seconds for %d iterations\n",
			elapsed.Seconds(), s.Iteration)
	}
}
