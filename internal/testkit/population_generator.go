package testkit

import (
	"fmt"
	"math/rand"

	"socialgap/domain/population"
)

// PopulationGeneratorConfig configures the synthetic population generator
type PopulationGeneratorConfig struct {
	HouseholdCount     int      `json:"household_count"`
	MaxHouseholdSize   int      `json:"max_household_size"`
	Neighborhoods      []string `json:"neighborhoods"`
	Zones              []string `json:"zones"`
	Programs           []string `json:"programs"`
	HealthLackRate     float64  `json:"health_lack_rate"`
	EducationLagRate   float64  `json:"education_lag_rate"`
	SocialSecurityRate float64  `json:"social_security_rate"`
	SupportRate        float64  `json:"support_rate"`
	EligibilityRate    float64  `json:"eligibility_rate"`
	Seed               int64    `json:"seed"`
}

// DefaultPopulationConfig returns defaults that produce a few thousand people
func DefaultPopulationConfig() PopulationGeneratorConfig {
	return PopulationGeneratorConfig{
		HouseholdCount:     800,
		MaxHouseholdSize:   6,
		Neighborhoods:      []string{"Centro", "San Miguel", "Las Flores", "El Rosario", "Santa Cruz", "Lomas del Sur", "La Joya"},
		Zones:              []string{"urbana", "rural"},
		Programs:           population.KnownPrograms,
		HealthLackRate:     0.3,
		EducationLagRate:   0.2,
		SocialSecurityRate: 0.45,
		SupportRate:        0.4,
		EligibilityRate:    0.25,
		Seed:               42,
	}
}

// PopulationGenerator generates household-structured person rows
type PopulationGenerator struct {
	config PopulationGeneratorConfig
	rng    *rand.Rand
}

// NewPopulationGenerator creates a generator seeded from config
func NewPopulationGenerator(config PopulationGeneratorConfig) *PopulationGenerator {
	if config.MaxHouseholdSize < 1 {
		config.MaxHouseholdSize = 1
	}
	return &PopulationGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds a full table. The same seed always yields the same rows.
func (g *PopulationGenerator) Generate() *population.Table {
	var rows []population.Person
	for h := 0; h < g.config.HouseholdCount; h++ {
		rows = append(rows, g.household(h)...)
	}
	return population.NewTable(Columns(g.config.Programs), rows)
}

func (g *PopulationGenerator) household(index int) []population.Person {
	householdID := fmt.Sprintf("H%05d", index+1)
	neighborhood := g.pick(g.config.Neighborhoods)
	zone := g.pick(g.config.Zones)
	censusBlock := fmt.Sprintf("%03d-%d", 100+g.rng.Intn(20), g.rng.Intn(10))
	block := fmt.Sprintf("%03d", 1+g.rng.Intn(60))
	size := 1 + g.rng.Intn(g.config.MaxHouseholdSize)

	members := make([]population.Person, 0, size)
	for m := 0; m < size; m++ {
		age := g.age(m)
		p := population.Person{
			HouseholdID:        householdID,
			PersonID:           fmt.Sprintf("%s-%02d", householdID, m+1),
			Age:                age,
			Sex:                g.sex(),
			Kinship:            kinship(m),
			PersonType:         "residente",
			Neighborhood:       neighborhood,
			CensusBlock:        censusBlock,
			Block:              block,
			Zone:               zone,
			HealthLack:         g.chance(g.config.HealthLackRate),
			EducationLag:       age >= 3 && g.chance(g.config.EducationLagRate),
			SocialSecurityLack: g.chance(g.config.SocialSecurityRate),
			ReceivesSupport:    g.chance(g.config.SupportRate),
			Eligible:           make(map[string]bool, len(g.config.Programs)),
		}
		for _, program := range g.config.Programs {
			p.Eligible[program] = g.eligible(program, p)
		}
		members = append(members, p)
	}
	return members
}

// eligible follows the age rules of the age-targeted programs and falls back
// to a flat rate for the rest
func (g *PopulationGenerator) eligible(program string, p population.Person) bool {
	switch program {
	case population.ProgramPensionAdultosMayores:
		return p.Age >= 65
	case population.ProgramPensionMujeresBienestar:
		return p.Sex == population.SexFemale && p.Age >= 60 && p.Age <= 64
	case population.ProgramBecaRitaCetina:
		return p.Age >= 12 && p.Age <= 15
	case population.ProgramBecaBenitoJuarez:
		return p.Age >= 15 && p.Age <= 18
	case population.ProgramDesdeLaCuna:
		return p.Age <= 2
	case population.ProgramIMSSBienestar:
		return p.HealthLack
	}
	return g.chance(g.config.EligibilityRate)
}

func (g *PopulationGenerator) age(member int) int {
	if member < 2 {
		return 18 + g.rng.Intn(70)
	}
	return g.rng.Intn(25)
}

func (g *PopulationGenerator) sex() population.Sex {
	if g.rng.Intn(2) == 0 {
		return population.SexFemale
	}
	return population.SexMale
}

func (g *PopulationGenerator) chance(rate float64) bool {
	return g.rng.Float64() < rate
}

func (g *PopulationGenerator) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[g.rng.Intn(len(values))]
}

func kinship(member int) string {
	switch member {
	case 0:
		return "jefe(a)"
	case 1:
		return "conyuge"
	default:
		return "hijo(a)"
	}
}
