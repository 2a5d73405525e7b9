// Package config parses the YAML configuration tree described in
// spec.md sec 6 into the fully wired components internal/sim drives.
// The core itself never reads YAML: this package's Build is the only
// place a Config, a potential.ShellTable, an interaction.Registry, a
// cellgrid.Grid, and a fel.FEL discipline are all constructed and
// handed to a *sim.Simulation together.
package config

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/cellgrid"
	"github.com/san-kum/edmd/internal/fel"
	"github.com/san-kum/edmd/internal/interaction"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/potential"
	"github.com/san-kum/edmd/internal/process"
	"github.com/san-kum/edmd/internal/sim"
	"github.com/san-kum/edmd/internal/vecmath"
)

const (
	DefaultEndTime = 100.0
	DefaultEpsCap  = 1e-9
)

// Config is the parsed form of Simulation/Particles, /Interactions,
// /Systems, /Dynamics, /BC, /Scheduler, /Ensemble (spec.md sec 6). It
// is produced in production by an external XML layer out of this
// module's scope; here it round-trips as YAML via gopkg.in/yaml.v3,
// the teacher's config idiom.
type Config struct {
	Particles     []ParticleSpec    `yaml:"particles"`
	Interactions  []InteractionSpec `yaml:"interactions"`
	Systems       SystemsConfig     `yaml:"systems"`
	Dynamics      string            `yaml:"dynamics"` // Newtonian | NewtonianMC | Compression
	BC            BoundaryConfig    `yaml:"bc"`
	Scheduler     SchedulerConfig   `yaml:"scheduler"`
	Ensemble      string            `yaml:"ensemble"` // NVE | NVT | NVShear | NECompression | NTCompression
	EndTime       float64           `yaml:"end_time"`
	EpsCap        float64           `yaml:"eps_cap"`
	OverlapSquash bool              `yaml:"overlap_squash"`
	Seed          uint64            `yaml:"seed"`
}

// ParticleSpec describes one species' population: Count particles of
// Mass/Diameter placed on a simple-cubic lattice filling Box and given
// Maxwell-Boltzmann velocities at Temperature.
type ParticleSpec struct {
	Species     int        `yaml:"species"`
	Count       int        `yaml:"count"`
	Mass        float64    `yaml:"mass"`
	Diameter    float64    `yaml:"diameter"`
	Temperature float64    `yaml:"temperature"`
	Box         [3]float64 `yaml:"box"`
}

// InteractionSpec configures one (A,B) species pair's governing law.
// Only the fields relevant to Type are consulted; the rest are
// ignored, matching the teacher's flat-struct YAML idiom over a
// polymorphic discriminated union.
type InteractionSpec struct {
	A int `yaml:"a"`
	B int `yaml:"b"`
	Type string `yaml:"type"` // HardSphere | Stepped | BondedSquareWell | Compressing

	Diameter float64 `yaml:"diameter"` // HardSphere, Compressing base, BondedSquareWell core

	Sigma           float64 `yaml:"sigma"`   // Stepped
	Epsilon         float64 `yaml:"epsilon"` // Stepped
	Cutoff          float64 `yaml:"cutoff"`
	AttractiveSteps int     `yaml:"attractive_steps"`
	RMode           string  `yaml:"r_mode"` // DeltaR | DeltaU
	UMode           string  `yaml:"u_mode"` // Midpoint | Left | Right | Volume | Virial
	StepEnergy      float64 `yaml:"step_energy"`
	HardCoreDiam    float64 `yaml:"hard_core_diameter"`
	KT              float64 `yaml:"kt"`

	RangeDiameter float64 `yaml:"range_diameter"` // BondedSquareWell
	Elasticity    float64 `yaml:"elasticity"`     // BondedSquareWell

	CompressionRate float64 `yaml:"compression_rate"` // Compressing
}

// SystemsConfig configures the non-pair processes of spec.md sec 4.5.
type SystemsConfig struct {
	Thermostat  *ThermostatConfig  `yaml:"thermostat"`
	Compression *CompressionConfig `yaml:"compression"`
}

type ThermostatConfig struct {
	Nu          float64 `yaml:"nu"`
	Temperature float64 `yaml:"temperature"`
}

type CompressionConfig struct {
	Rate float64 `yaml:"rate"`
}

// BoundaryConfig selects and parameterises one of vecmath's Boundary
// implementations.
type BoundaryConfig struct {
	Kind      string     `yaml:"kind"` // None | Periodic | LeesEdwards
	Lengths   [3]float64 `yaml:"lengths"`
	ShearRate float64    `yaml:"shear_rate"`
}

// SchedulerConfig selects the FEL discipline (spec.md sec 4.6, Open
// Question resolved in internal/fel).
type SchedulerConfig struct {
	Sorter              string  `yaml:"sorter"` // Heap | Calendar
	CalendarBucketWidth float64 `yaml:"calendar_bucket_width"`
}

// DefaultConfig is a small one-species NVT square-well system: enough
// to exercise every stage of the pipeline (thermostat, stepped
// potential, periodic boundary, heap scheduler) out of the box.
func DefaultConfig() *Config {
	return &Config{
		Particles: []ParticleSpec{
			{Species: 0, Count: 64, Mass: 1.0, Diameter: 1.0, Temperature: 1.0, Box: [3]float64{8, 8, 8}},
		},
		Interactions: []InteractionSpec{
			{A: 0, B: 0, Type: "Stepped", Sigma: 1.0, Epsilon: 1.0, Cutoff: 1.5,
				AttractiveSteps: 10, RMode: "DeltaR", UMode: "Midpoint"},
		},
		Systems: SystemsConfig{
			Thermostat: &ThermostatConfig{Nu: 1.0, Temperature: 1.0},
		},
		Dynamics: "Newtonian",
		BC:       BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{8, 8, 8}},
		Scheduler: SchedulerConfig{
			Sorter: "Heap",
		},
		Ensemble:      "NVT",
		EndTime:       DefaultEndTime,
		EpsCap:        DefaultEpsCap,
		OverlapSquash: false,
		Seed:          1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build wires a fully parsed Config into a ready-to-run
// *sim.Simulation: it places particles on a lattice, draws
// Maxwell-Boltzmann initial velocities, constructs the boundary, cell
// grid, interaction registry (building a potential.ShellTable per
// Stepped interaction), capture map, FEL discipline, and optional
// thermostat, and hands them all to sim.New.
func Build(cfg *Config) (*sim.Simulation, error) {
	if len(cfg.Particles) == 0 {
		return nil, fmt.Errorf("config: no particle species specified")
	}

	boundary, lengths, err := buildBoundary(cfg.BC)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xd1b54a32d192ed03))
	particles := buildParticles(cfg.Particles, rng)

	maxCutoff := 1.0
	for _, in := range cfg.Interactions {
		if in.Cutoff > maxCutoff {
			maxCutoff = in.Cutoff
		}
		if in.Diameter > maxCutoff {
			maxCutoff = in.Diameter
		}
		if in.RangeDiameter > maxCutoff {
			maxCutoff = in.RangeDiameter
		}
	}

	grid := cellgrid.New(lengths, maxCutoff, len(particles))
	for _, p := range particles {
		grid.Insert(p.ID, p.Pos)
	}

	registry := interaction.NewRegistry()
	for _, in := range cfg.Interactions {
		impl, err := buildInteraction(in)
		if err != nil {
			return nil, err
		}
		registry.Register(particle.Species(in.A), particle.Species(in.B), impl)
	}

	var thermostat *process.AndersenThermostat
	if cfg.Systems.Thermostat != nil {
		thermostat = process.NewAndersenThermostat(
			cfg.Systems.Thermostat.Nu, cfg.Systems.Thermostat.Temperature, cfg.Seed)
	}

	var scheduler fel.FEL
	switch cfg.Scheduler.Sorter {
	case "Calendar":
		width := cfg.Scheduler.CalendarBucketWidth
		if width <= 0 {
			width = 1.0
		}
		scheduler = fel.NewCalendarFEL(len(particles)+1, width)
	default:
		scheduler = fel.NewHeapFEL(len(particles) + 1)
	}

	return sim.New(sim.Config{
		Particles:     particles,
		Boundary:      boundary,
		Grid:          grid,
		FEL:           scheduler,
		Registry:      registry,
		Capture:       capture.NewMap(),
		Thermostat:    thermostat,
		EndTime:       cfg.EndTime,
		EpsCap:        cfg.EpsCap,
		OverlapSquash: cfg.OverlapSquash,
	})
}

func buildBoundary(bc BoundaryConfig) (vecmath.Boundary, vecmath.Vec3, error) {
	lengths := vecmath.Vec3{X: bc.Lengths[0], Y: bc.Lengths[1], Z: bc.Lengths[2]}
	switch bc.Kind {
	case "", "None":
		if lengths.X == 0 {
			lengths = vecmath.Vec3{X: 100, Y: 100, Z: 100}
		}
		return vecmath.None{}, lengths, nil
	case "Periodic":
		return vecmath.Periodic{L: lengths}, lengths, nil
	case "LeesEdwards":
		return vecmath.LeesEdwards{L: lengths, ShearRate: bc.ShearRate}, lengths, nil
	default:
		return nil, vecmath.Vec3{}, fmt.Errorf("config: unknown boundary kind %q", bc.Kind)
	}
}

// buildParticles places each species' particles on a simple-cubic
// lattice filling its Box and draws component-wise Gaussian
// velocities scaled to Temperature/Mass (spec.md's Maxwell-Boltzmann
// initial condition).
func buildParticles(specs []ParticleSpec, rng *rand.Rand) []*particle.Particle {
	var particles []*particle.Particle
	id := 0
	for _, spec := range specs {
		side := int(math.Ceil(math.Cbrt(float64(spec.Count))))
		if side < 1 {
			side = 1
		}
		spacing := vecmath.Vec3{
			X: spec.Box[0] / float64(side),
			Y: spec.Box[1] / float64(side),
			Z: spec.Box[2] / float64(side),
		}
		sigma := math.Sqrt(spec.Temperature / spec.Mass)

		placed := 0
		for x := 0; x < side && placed < spec.Count; x++ {
			for y := 0; y < side && placed < spec.Count; y++ {
				for z := 0; z < side && placed < spec.Count; z++ {
					p := particle.New(id, particle.Species(spec.Species))
					p.Mass = spec.Mass
					p.Diameter = spec.Diameter
					p.Pos = vecmath.Vec3{
						X: (float64(x) + 0.5) * spacing.X,
						Y: (float64(y) + 0.5) * spacing.Y,
						Z: (float64(z) + 0.5) * spacing.Z,
					}
					p.Vel = vecmath.Vec3{
						X: sigma * sampleGaussian(rng),
						Y: sigma * sampleGaussian(rng),
						Z: sigma * sampleGaussian(rng),
					}
					particles = append(particles, p)
					id++
					placed++
				}
			}
		}
	}
	return particles
}

// sampleGaussian draws a standard-normal sample via Box-Muller, the
// same construction as process.AndersenThermostat.gaussian.
func sampleGaussian(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	if u1 <= 0 {
		u1 = 1e-300
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func buildInteraction(in InteractionSpec) (interaction.Interaction, error) {
	switch in.Type {
	case "HardSphere":
		return interaction.HardSphere{Diameter: in.Diameter}, nil
	case "Stepped":
		lj := potential.LennardJones{Sigma: in.Sigma, Epsilon: in.Epsilon, Cutoff: in.Cutoff}
		table := potential.NewShellTable(potential.Params{
			Pot:          lj,
			Cutoff:       in.Cutoff,
			RMode:        parseRMode(in.RMode),
			EMode:        parseUMode(in.UMode),
			NAtt:         in.AttractiveSteps,
			StepEnergy:   in.StepEnergy,
			HardCoreDiam: in.HardCoreDiam,
			KT:           in.KT,
		})
		return &interaction.Stepped{Table: table, Cutoff: in.Cutoff}, nil
	case "BondedSquareWell":
		return interaction.BondedSquareWell{
			CoreDiameter: in.Diameter, RangeDiameter: in.RangeDiameter, Elasticity: in.Elasticity,
		}, nil
	case "Compressing":
		return &interaction.Compressing{BaseDiameter: in.Diameter, Rate: in.CompressionRate}, nil
	default:
		return nil, fmt.Errorf("config: unknown interaction type %q", in.Type)
	}
}

func parseRMode(s string) potential.RadialMode {
	if s == "DeltaU" {
		return potential.DeltaU
	}
	return potential.DeltaR
}

func parseUMode(s string) potential.EnergyMode {
	switch s {
	case "Left":
		return potential.Left
	case "Right":
		return potential.Right
	case "Volume":
		return potential.Volume
	case "Virial":
		return potential.Virial
	default:
		return potential.Midpoint
	}
}
