package registry_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

var _ = Describe("ValidateName", func() {
	DescribeTable("accepts",
		func(name string) {
			Expect(registry.ValidateName(name)).To(Succeed())
		},
		Entry("single word", "weather"),
		Entry("hyphenated", "weather-report-2"),
		Entry("digits", "42"),
		Entry("max length", strings.Repeat("a", registry.MaxNameLength)),
	)

	DescribeTable("rejects",
		func(name string) {
			Expect(registry.ValidateName(name)).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("uppercase", "Weather"),
		Entry("leading hyphen", "-weather"),
		Entry("trailing hyphen", "weather-"),
		Entry("double hyphen", "weather--report"),
		Entry("underscore", "weather_report"),
		Entry("slash", "a/b"),
		Entry("too long", strings.Repeat("a", registry.MaxNameLength+1)),
	)
})

var _ = Describe("Registration.Validate", func() {
	var reg registry.Registration

	BeforeEach(func() {
		reg = registry.Registration{
			Principal:   principal.Principal{UserID: "alice"},
			Name:        "weather",
			DisplayName: "Weather",
			Description: "Forecasts",
			StoragePath: "skills/weather",
		}
	})

	It("accepts a complete registration", func() {
		Expect(reg.Validate()).To(Succeed())
	})

	It("returns 400 for invalid input", func() {
		reg.DisplayName = " "
		Expect(registry.StatusOf(reg.Validate())).To(Equal(400))

		reg.DisplayName = "Weather"
		reg.Principal.UserID = ""
		Expect(registry.StatusOf(reg.Validate())).To(Equal(400))
	})

	It("returns 409 for every built-in name", func() {
		for _, name := range registry.BuiltinSkills() {
			reg.Name = name
			err := reg.Validate()
			Expect(registry.StatusOf(err)).To(Equal(409), name)
			Expect(err.Error()).To(ContainSubstring(registry.CodeBuiltinCollision))
		}
	})
})

var _ = Describe("Error", func() {
	It("formats with and without a code", func() {
		Expect((&registry.Error{Status: 502, Message: "down"}).Error()).To(Equal("registry: 502: down"))
		Expect(registry.InvalidError("bad").Error()).To(Equal("registry: 400 INVALID_REQUEST: bad"))
	})

	It("is found through wrapping", func() {
		err := fmt.Errorf("registering: %w", &registry.Error{Status: 409})
		Expect(registry.StatusOf(err)).To(Equal(409))
		Expect(registry.StatusOf(fmt.Errorf("plain"))).To(Equal(0))
	})
})
