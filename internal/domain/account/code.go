// internal/domain/account/code.go
package account

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/your-org/bottling-erp/internal/pkg/apperr"
)

// Account codes look like "C-2-NTH-042": a type letter, a price-level digit,
// a three-letter zone and a three-digit sequence. All lookups and display
// logic go through this type instead of splitting the string ad hoc.
type AccountCode struct {
	Type       AccountType
	PriceLevel int
	Zone       string
	Sequence   int
}

var codePattern = regexp.MustCompile(`^([CSR])-([1-9])-([A-Z]{3})-(\d{3})$`)

var typeLetters = map[string]AccountType{
	"C": AccountTypeCustomer,
	"S": AccountTypeSupplier,
	"R": AccountTypeRep,
}

// ParseCode validates and decomposes an account code string
func ParseCode(code string) (AccountCode, error) {
	matches := codePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if matches == nil {
		return AccountCode{}, apperr.Validation("account code %q does not match T-PL-ZZZ-NNN", code)
	}

	priceLevel, _ := strconv.Atoi(matches[2])
	sequence, _ := strconv.Atoi(matches[4])
	return AccountCode{
		Type:       typeLetters[matches[1]],
		PriceLevel: priceLevel,
		Zone:       matches[3],
		Sequence:   sequence,
	}, nil
}

// String reassembles the canonical code form
func (c AccountCode) String() string {
	return fmt.Sprintf("%s-%d-%s-%03d", c.Type.Letter(), c.PriceLevel, c.Zone, c.Sequence)
}

// Letter returns the single-character code prefix for the account type
func (t AccountType) Letter() string {
	switch t {
	case AccountTypeCustomer:
		return "C"
	case AccountTypeSupplier:
		return "S"
	case AccountTypeRep:
		return "R"
	}
	return "?"
}
