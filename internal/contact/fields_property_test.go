package contact

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestValidateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1815)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("validation is idempotent", prop.ForAll(
		func(name, email, message string) bool {
			f := Fields{Name: name, Email: email, Message: message}
			first := Validate(f)
			second := Validate(f)
			if len(first) != len(second) {
				return false
			}
			for k, v := range first {
				if second[k] != v {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("blank fields always fail", prop.ForAll(
		func(pad string) bool {
			blank := strings.Repeat(" ", len(pad)%5) + strings.Repeat("\t", len(pad)%3)
			errs := Validate(Fields{Name: blank, Email: blank, Message: blank})
			return len(errs) == 3
		},
		gen.AlphaString(),
	))

	properties.Property("well formed addresses pass", prop.ForAll(
		func(local, domain, tld string) bool {
			email := local + "@" + domain + "." + tld
			errs := Validate(Fields{Name: "Ada", Email: email, Message: "Hi"})
			return errs.Valid()
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("addresses without @ fail", prop.ForAll(
		func(s string) bool {
			if strings.TrimSpace(s) == "" {
				return true
			}
			errs := Validate(Fields{Name: "Ada", Email: s, Message: "Hi"})
			return errs[FieldEmail] == MsgEmailInvalid && len(errs) == 1
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
