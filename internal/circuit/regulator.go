package circuit

import (
	"strings"
	"unicode"
)

// regulatorAliases maps normalized spellings of common repressors to one key
var regulatorAliases = map[string]string{
	"laci":              "laci",
	"lacrepressor":      "laci",
	"tetr":              "tetr",
	"tetrepressor":      "tetr",
	"ci":                "ci",
	"lambdaci":          "ci",
	"lambdacirepressor": "ci",
	"lambdac1":          "ci",
}

// RegulatorKey normalizes a protein name so a promoter's activator or inhibitor
// matches the gene producing it: "Lac I", "LacI" and "lac repressor" are one key.
func RegulatorKey(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	key := b.String()
	if alias, ok := regulatorAliases[key]; ok {
		return alias
	}
	return key
}
