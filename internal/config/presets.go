package config

// Presets groups ready-to-run Configs by scenario family, the same
// two-level map the teacher used for its ODE models.
var Presets = map[string]map[string]*Config{
	"hard_sphere": {
		"dilute_gas": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 125, Mass: 1.0, Diameter: 1.0, Temperature: 1.0, Box: [3]float64{20, 20, 20}},
			},
			Interactions: []InteractionSpec{{A: 0, B: 0, Type: "HardSphere", Diameter: 1.0}},
			Dynamics:     "Newtonian",
			BC:           BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{20, 20, 20}},
			Scheduler:    SchedulerConfig{Sorter: "Heap"},
			Ensemble:     "NVE",
			EndTime:      50.0,
			EpsCap:       1e-9,
		},
		"dense_liquid": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 512, Mass: 1.0, Diameter: 1.0, Temperature: 1.0, Box: [3]float64{10, 10, 10}},
			},
			Interactions: []InteractionSpec{{A: 0, B: 0, Type: "HardSphere", Diameter: 1.0}},
			Systems:      SystemsConfig{Thermostat: &ThermostatConfig{Nu: 2.0, Temperature: 1.0}},
			Dynamics:     "Newtonian",
			BC:           BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{10, 10, 10}},
			Scheduler:    SchedulerConfig{Sorter: "Calendar", CalendarBucketWidth: 0.01},
			Ensemble:     "NVT",
			EndTime:      50.0,
			EpsCap:       1e-9,
		},
	},
	"stepped_well": {
		"square_well_fluid": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 216, Mass: 1.0, Diameter: 1.0, Temperature: 1.0, Box: [3]float64{12, 12, 12}},
			},
			Interactions: []InteractionSpec{
				{A: 0, B: 0, Type: "Stepped", Sigma: 1.0, Epsilon: 1.0, Cutoff: 1.5,
					AttractiveSteps: 10, RMode: "DeltaR", UMode: "Midpoint"},
			},
			Systems:   SystemsConfig{Thermostat: &ThermostatConfig{Nu: 1.0, Temperature: 1.0}},
			Dynamics:  "Newtonian",
			BC:        BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{12, 12, 12}},
			Scheduler: SchedulerConfig{Sorter: "Heap"},
			Ensemble:  "NVT",
			EndTime:   100.0,
			EpsCap:    1e-9,
		},
		"fine_grained_lj": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 216, Mass: 1.0, Diameter: 1.0, Temperature: 1.2, Box: [3]float64{12, 12, 12}},
			},
			Interactions: []InteractionSpec{
				{A: 0, B: 0, Type: "Stepped", Sigma: 1.0, Epsilon: 1.0, Cutoff: 2.5,
					AttractiveSteps: 40, RMode: "DeltaU", UMode: "Virial"},
			},
			Systems:   SystemsConfig{Thermostat: &ThermostatConfig{Nu: 1.0, Temperature: 1.2}},
			Dynamics:  "Newtonian",
			BC:        BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{12, 12, 12}},
			Scheduler: SchedulerConfig{Sorter: "Calendar", CalendarBucketWidth: 0.005},
			Ensemble:  "NVT",
			EndTime:   100.0,
			EpsCap:    1e-9,
		},
	},
	"bonded": {
		"polymer_chain": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 32, Mass: 1.0, Diameter: 1.0, Temperature: 1.0, Box: [3]float64{16, 16, 16}},
			},
			Interactions: []InteractionSpec{
				{A: 0, B: 0, Type: "BondedSquareWell", Diameter: 1.0, RangeDiameter: 1.3, Elasticity: 1.0},
			},
			Systems:   SystemsConfig{Thermostat: &ThermostatConfig{Nu: 1.0, Temperature: 1.0}},
			Dynamics:  "Newtonian",
			BC:        BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{16, 16, 16}},
			Scheduler: SchedulerConfig{Sorter: "Heap"},
			Ensemble:  "NVT",
			EndTime:   80.0,
			EpsCap:    1e-9,
		},
	},
	"sheared": {
		"couette_flow": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 216, Mass: 1.0, Diameter: 1.0, Temperature: 1.0, Box: [3]float64{12, 12, 12}},
			},
			Interactions: []InteractionSpec{{A: 0, B: 0, Type: "HardSphere", Diameter: 1.0}},
			Systems:      SystemsConfig{Thermostat: &ThermostatConfig{Nu: 1.0, Temperature: 1.0}},
			Dynamics:     "Newtonian",
			BC:           BoundaryConfig{Kind: "LeesEdwards", Lengths: [3]float64{12, 12, 12}, ShearRate: 0.5},
			Scheduler:    SchedulerConfig{Sorter: "Heap"},
			Ensemble:     "NVShear",
			EndTime:      60.0,
			EpsCap:       1e-9,
		},
	},
	"compression": {
		"slow_jam": {
			Particles: []ParticleSpec{
				{Species: 0, Count: 216, Mass: 1.0, Diameter: 0.5, Temperature: 1.0, Box: [3]float64{14, 14, 14}},
			},
			Interactions: []InteractionSpec{
				{A: 0, B: 0, Type: "Compressing", Diameter: 0.5, CompressionRate: 0.001},
			},
			Systems:   SystemsConfig{Compression: &CompressionConfig{Rate: 0.001}},
			Dynamics:  "Compression",
			BC:        BoundaryConfig{Kind: "Periodic", Lengths: [3]float64{14, 14, 14}},
			Scheduler: SchedulerConfig{Sorter: "Calendar", CalendarBucketWidth: 0.01},
			Ensemble:  "NECompression",
			EndTime:   200.0,
			EpsCap:    1e-9,
		},
	},
}

func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	return names
}
