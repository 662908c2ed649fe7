package eligibility_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/lookalike/internal/domain/eligibility"
	"github.com/okian/lookalike/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func vec(x float64) model.Vector {
	v := make(model.Vector, model.AttributeCount)
	for i := range v {
		v[i] = x
	}
	return v
}

func samplePool() []model.Player {
	return []model.Player{
		{Name: "A", Age: 20, League: "X", Positions: []model.Position{model.ST}, Value: 1e6, Wage: 1e4, Attributes: vec(1)},
		{Name: "B", Age: 25, League: "X", Positions: []model.Position{model.ST}, Value: 2e6, Wage: 2e4, Attributes: vec(1)},
		{Name: "C", Age: 40, League: "Y", Positions: []model.Position{model.GK}, Value: 5e5, Wage: 5e3, Attributes: vec(9)},
		{Name: "D", Age: 22, League: "Y", Positions: []model.Position{model.CB, model.ST}, Value: 2.5e6, Wage: 1e4, Attributes: vec(4)},
		{Name: "E", Age: 29, League: "Z", Positions: []model.Position{model.LW, model.ST}, Value: 9e6, Wage: 9e4, Attributes: vec(5)},
	}
}

func names(ps []model.Player) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func baseConstraints() eligibility.Constraints {
	return eligibility.Constraints{
		ExcludeName: "A",
		MaxAge:      30,
		Leagues:     []string{"X"},
		MaxValue:    3e6,
		MaxWage:     3e4,
		Positions:   model.NewPositionSet(model.ST),
	}
}

func TestFilter(t *testing.T) {
	Convey("Given a small pool", t, func() {
		pool := samplePool()

		Convey("When filtering for the reference scenario", func() {
			out := eligibility.Filter(pool, baseConstraints())

			Convey("Then only B should remain", func() {
				So(names(out), ShouldResemble, []string{"B"})
			})
		})

		Convey("When the league set contains All", func() {
			c := baseConstraints()
			c.Leagues = []string{"X", eligibility.AllLeagues}
			out := eligibility.Filter(pool, c)

			Convey("Then league is unconstrained and order is preserved", func() {
				So(names(out), ShouldResemble, []string{"B", "D"})
			})

			Convey("And it should equal listing every league explicitly", func() {
				c2 := baseConstraints()
				c2.Leagues = []string{"X", "Y", "Z"}
				So(names(eligibility.Filter(pool, c2)), ShouldResemble, names(out))
			})
		})

		Convey("When filtering twice", func() {
			c := baseConstraints()
			c.Leagues = []string{eligibility.AllLeagues}
			once := eligibility.Filter(pool, c)
			twice := eligibility.Filter(once, c)

			Convey("Then the result should be unchanged", func() {
				So(names(twice), ShouldResemble, names(once))
			})
		})

		Convey("When the wage ceiling is zero", func() {
			c := baseConstraints()
			c.MaxWage = 0
			out := eligibility.Filter(pool, c)

			Convey("Then the pool should be empty, not nil-panicking", func() {
				So(out, ShouldNotBeNil)
				So(len(out), ShouldEqual, 0)
			})
		})

		Convey("When the target shares a name with another record", func() {
			dup := append(samplePool(), model.Player{Name: "A", Age: 21, League: "X", Positions: []model.Position{model.ST}, Value: 1, Wage: 1, Attributes: vec(1)})
			out := eligibility.Filter(dup, baseConstraints())

			Convey("Then every record with that name is excluded", func() {
				for _, p := range out {
					So(p.Name, ShouldNotEqual, "A")
				}
			})
		})

		Convey("When checking single records", func() {
			c := baseConstraints()

			Convey("Then Match agrees with Filter", func() {
				kept := map[string]bool{}
				for _, p := range eligibility.Filter(pool, c) {
					kept[p.Name] = true
				}
				for _, p := range pool {
					So(eligibility.Match(p, c), ShouldEqual, kept[p.Name])
				}
			})
		})

		Convey("Then the input pool should be untouched", func() {
			eligibility.Filter(pool, baseConstraints())
			So(names(pool), ShouldResemble, []string{"A", "B", "C", "D", "E"})
		})
	})
}

func TestConstraintsValidate(t *testing.T) {
	Convey("Given constraints", t, func() {
		Convey("When they are well formed", func() {
			So(baseConstraints().Validate(), ShouldBeNil)
		})

		cases := []struct {
			name  string
			field string
			edit  func(c *eligibility.Constraints)
		}{
			{"negative age", "max_age", func(c *eligibility.Constraints) { c.MaxAge = -1 }},
			{"negative value", "max_value", func(c *eligibility.Constraints) { c.MaxValue = -5 }},
			{"NaN value", "max_value", func(c *eligibility.Constraints) { c.MaxValue = math.NaN() }},
			{"negative wage", "max_wage", func(c *eligibility.Constraints) { c.MaxWage = -0.01 }},
			{"no leagues", "leagues", func(c *eligibility.Constraints) { c.Leagues = nil }},
			{"no positions", "positions", func(c *eligibility.Constraints) { c.Positions = nil }},
		}
		for _, tc := range cases {
			Convey("When they have "+tc.name, func() {
				c := baseConstraints()
				tc.edit(&c)
				err := c.Validate()

				Convey("Then a ValidationError names the field", func() {
					So(errors.Is(err, eligibility.ErrValidation), ShouldBeTrue)
					var ve *eligibility.ValidationError
					So(errors.As(err, &ve), ShouldBeTrue)
					So(ve.Field, ShouldEqual, tc.field)
				})
			})
		}

		Convey("When the ceilings are zero", func() {
			c := baseConstraints()
			c.MaxAge, c.MaxValue, c.MaxWage = 0, 0, 0

			Convey("Then they are valid", func() {
				So(c.Validate(), ShouldBeNil)
			})
		})
	})
}
