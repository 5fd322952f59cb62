package eventstream_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/eventstream"
	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
)

var _ = Describe("Event", func() {
	var (
		p     principal.Principal
		skill registry.Skill
	)

	BeforeEach(func() {
		p = principal.Principal{UserID: "alice", TenantID: "acme"}
		skill = registry.Skill{ID: "sk-1", Name: "weather", StoragePath: "skills/weather"}
	})

	It("marshals SkillRegisteredEvent with expected top-level keys", func() {
		event := eventstream.NewSkillRegisteredEvent(p, skill, []string{"skills/weather/MANIFEST"})

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKeyWithValue("event_type", "skill.registered"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("principal"))
		Expect(got).To(HaveKey("skill"))
		Expect(got).To(HaveKey("artifacts"))
	})

	It("assigns a fresh event ID each time", func() {
		a := eventstream.NewSkillRegisteredEvent(p, skill, nil)
		b := eventstream.NewSkillRegisteredEvent(p, skill, nil)
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("keys events by principal and skill name", func() {
		event := eventstream.NewSkillRegisteredEvent(p, skill, nil)
		Expect(event.Key()).To(Equal("acme/alice/weather"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeSkillRegistered).To(Equal("skill.registered"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).To(MatchError("nil skill event"))
	})
})
