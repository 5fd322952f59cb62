package provision_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/policy"
	"github.com/papercomputeco/skillgate/pkg/provision"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

var _ = Describe("NewResponse", func() {
	It("renders registrations", func() {
		resp := provision.NewResponse(&provision.Registered{Skill: &registry.Skill{Name: "weather", DisplayName: "Weather"}})
		Expect(resp.Status).To(Equal("success"))
		Expect(resp.Skill.Name).To(Equal("weather"))
		Expect(resp.Message).To(Equal("Skill 'Weather' created"))
	})

	It("renders rejections with their diagnostics", func() {
		resp := provision.NewResponse(&provision.Rejected{
			Filename:    "main.py",
			Diagnostics: []policy.Diagnostic{{Line: 1, Message: "Blocked import 'os'"}},
		})
		Expect(resp.Status).To(Equal("rejected"))
		Expect(resp.Error).To(Equal("Validation failed for main.py"))
		Expect(resp.ValidationErrors).To(Equal([]string{"Line 1: Blocked import 'os'"}))
	})

	It("renders upload failures with their stage", func() {
		resp := provision.NewResponse(&provision.UploadFailed{
			Stage:    provision.StageScript,
			Filename: "main.py",
			Path:     "skills/weather/scripts/main.py",
			Cause:    errors.New("timeout"),
		})
		Expect(resp.Status).To(Equal("error"))
		Expect(resp.Stage).To(Equal("script"))
		Expect(resp.Error).To(ContainSubstring("timeout"))
	})

	It("renders registration failures with the registry status", func() {
		resp := provision.NewResponse(&provision.RegistrationFailed{Cause: &registry.Error{Status: 409, Message: "reserved"}})
		Expect(resp.Stage).To(Equal(provision.StageRegistration))
		Expect(resp.RegistryStatus).To(Equal(409))
	})
})
