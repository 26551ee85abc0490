package stats

// Trait names reported by Evaluate.
const (
	TraitAbundant  = "Abundant"
	TraitFortified = "Fortified"
	TraitOverrun   = "Overrun"
)

// Evaluation summarizes resolved stats for logging and export.
type Evaluation struct {
	Traits   []string `yaml:"traits,omitempty"`
	Balance  float32  `yaml:"balance"`
	Affinity Affinity `yaml:"affinity"`
}

// Evaluate classifies s. Balance is zero for a perfectly balanced island and
// grows as danger outweighs defense or people outgrow food.
func Evaluate(s Stats) Evaluation {
	var e Evaluation
	e.Affinity = s.CalculateAffinity()

	if s.Food > s.People*2 {
		e.Traits = append(e.Traits, TraitAbundant)
	}
	if s.Defense > s.Danger*2 {
		e.Traits = append(e.Traits, TraitFortified)
	}
	if s.Danger > s.Defense*2 {
		e.Traits = append(e.Traits, TraitOverrun)
	}

	e.Balance = abs(s.Danger-s.Defense) + abs(s.People-s.Food)
	return e
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
