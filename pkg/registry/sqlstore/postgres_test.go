package sqlstore_test

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/registry/sqlstore"
)

var skillColumns = []string{"id", "tenant_id", "user_id", "name", "display_name", "description", "storage_path", "created_at", "updated_at"}

var _ = Describe("Postgres registry", func() {
	var (
		ctx  context.Context
		mock sqlmock.Sqlmock
		r    *sqlstore.Registry
		p    principal.Principal
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, m, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		mock = m
		r = sqlstore.New(db, sqlstore.Postgres)
		p = principal.Principal{UserID: "alice"}

		DeferCleanup(func() {
			Expect(mock.ExpectationsWereMet()).To(Succeed())
		})
	})

	It("creates the schema on Init", func() {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS skills")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		Expect(r.Init(ctx)).To(Succeed())
	})

	It("upserts with numbered placeholders and reads the row back", func() {
		now := time.Now().UTC()
		mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)")).
			WithArgs(sqlmock.AnyArg(), "", "alice", "weather", "Weather", "Forecasts", "skills/weather", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE tenant_id = $1 AND user_id = $2 AND name = $3")).
			WithArgs("", "alice", "weather").
			WillReturnRows(sqlmock.NewRows(skillColumns).
				AddRow("skill-1", "", "alice", "weather", "Weather", "Forecasts", "skills/weather", now, now))

		skill, err := r.Register(ctx, registry.Registration{
			Principal:   p,
			Name:        "weather",
			DisplayName: "Weather",
			Description: "Forecasts",
			StoragePath: "skills/weather",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(skill.ID).To(Equal("skill-1"))
		Expect(skill.UserID).To(Equal("alice"))
	})

	It("wraps database errors", func() {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO skills")).
			WillReturnError(errors.New("connection reset"))

		_, err := r.Register(ctx, registry.Registration{
			Principal:   p,
			Name:        "weather",
			DisplayName: "Weather",
			StoragePath: "skills/weather",
		})
		Expect(err).To(MatchError(ContainSubstring("connection reset")))
		Expect(registry.StatusOf(err)).To(Equal(0))
	})

	It("maps missing rows to ErrNotFound", func() {
		mock.ExpectQuery(regexp.QuoteMeta("FROM skills WHERE tenant_id = $1 AND user_id = $2 AND name = $3")).
			WithArgs("", "alice", "missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := r.Get(ctx, p, "missing")
		Expect(err).To(MatchError(registry.ErrNotFound))
	})

	It("lists skills for the principal", func() {
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE tenant_id = $1 AND user_id = $2 ORDER BY name")).
			WithArgs("", "alice").
			WillReturnRows(sqlmock.NewRows(skillColumns).
				AddRow("1", "", "alice", "alpha", "Alpha", "", "skills/alpha", now, now).
				AddRow("2", "", "alice", "beta", "Beta", "", "skills/beta", now, now))

		skills, err := r.List(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(skills).To(HaveLen(2))
		Expect(skills[1].Name).To(Equal("beta"))
	})
})
