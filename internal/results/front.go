package results

import "strings"

// Front is the coalition a candidate's party is grouped under.
type Front string

const (
	FrontLDF   Front = "LDF"
	FrontUDF   Front = "UDF"
	FrontNDA   Front = "NDA"
	FrontIND   Front = "IND"
	FrontOther Front = "Other"
)

// SeatFronts are the fronts that carry a seat tally on a LocalBodySummary,
// in presentation order.
var SeatFronts = []Front{FrontLDF, FrontUDF, FrontNDA, FrontIND}

// ParseFront maps a free-text front label to a Front. Unknown labels are Other.
func ParseFront(s string) Front {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LDF":
		return FrontLDF
	case "UDF":
		return FrontUDF
	case "NDA":
		return FrontNDA
	case "IND", "INDEPENDENT", "IND/OTHER":
		return FrontIND
	default:
		return FrontOther
	}
}

// Classifier resolves a party name to its front.
type Classifier struct {
	byParty map[string]Front
}

// DefaultFrontTable is the party table used when no configuration overrides it.
var DefaultFrontTable = map[Front][]string{
	FrontLDF: {"CPI(M)", "CPI", "KC(M)", "JD(S)", "NCP(S)", "RJD", "INL", "Congress(S)", "KC(B)", "JKC", "LDF IND"},
	FrontUDF: {"INC", "IUML", "KC", "RSP", "CMP", "KC(J)", "FB", "NCK", "KDP", "UDF IND"},
	FrontNDA: {"BJP", "BDJS", "KC(Nationalist)", "NDA IND"},
	FrontIND: {"IND", "Ind/Other", "Independent"},
}

func NewClassifier(table map[Front][]string) *Classifier {
	c := &Classifier{byParty: make(map[string]Front)}
	for front, parties := range table {
		for _, p := range parties {
			c.byParty[partyKey(p)] = front
		}
	}
	return c
}

func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultFrontTable)
}

// Classify returns the front for party. A blank party is an independent;
// a party that is itself a front label maps to that front.
func (c *Classifier) Classify(party string) Front {
	key := partyKey(party)
	if key == "" {
		return FrontIND
	}
	if f, ok := c.byParty[key]; ok {
		return f
	}
	if f := ParseFront(party); f != FrontOther {
		return f
	}
	return FrontOther
}

func partyKey(p string) string {
	return strings.ToUpper(strings.Join(strings.Fields(p), ""))
}
