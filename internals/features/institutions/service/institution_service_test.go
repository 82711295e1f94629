package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	model "edudesk_backend/internals/features/institutions/model"
	uploadService "edudesk_backend/internals/features/uploads/service"
	helper "edudesk_backend/internals/helpers"
	helperOSS "edudesk_backend/internals/helpers/oss"
	"edudesk_backend/internals/helpers/oss/osstest"
	"edudesk_backend/internals/store/memstore"
)

var fixedNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func newSettings(t *testing.T) (*Settings, *osstest.Gateway) {
	t.Helper()
	mem := memstore.New()
	gw := osstest.New()
	assets := uploadService.NewAssetService(gw, mem, helperOSS.DefaultWebPOptions(), zap.NewNop())
	assets.Now = func() time.Time { return fixedNow }
	s := NewSettings(mem, assets)
	s.Now = func() time.Time { return fixedNow }
	return s, gw
}

func acme() model.Institution {
	return model.Institution{
		Name:         "Acme Public School",
		AcademicYear: "25-26",
		Classes:      []string{"LKG", "UKG", "1"},
		Divisions:    []string{"A", "B"},
	}
}

func TestCounters(t *testing.T) {
	s, _ := newSettings(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "acme", acme())
	require.NoError(t, err)

	c := NewCounters(s.Institutions)
	for want := int64(1); want <= 3; want++ {
		n, err := c.Next(ctx, "acme", CounterFeeID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := c.Next(ctx, "acme", CounterReceipt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = c.Next(ctx, "acme", CounterKind("bogus"))
	assert.Error(t, err)
	_, err = c.Next(ctx, "ghost", CounterFeeID)
	assert.Error(t, err)

	assert.Equal(t, "ACME-F0042", FormatFeeID("acme", 42))
	assert.Equal(t, "ACME/R/000007", FormatReceiptNo("acme", 7))
	assert.Equal(t, "ACME/25-26/0012", FormatAdmissionNo("acme", "25-26", 12))
}

func TestCheckLists(t *testing.T) {
	in := acme()
	assert.NoError(t, CheckLists(in))

	in.AcademicYear = "2025"
	assert.Error(t, CheckLists(in))

	in = acme()
	in.Classes = []string{"LKG", "lkg "}
	err := CheckLists(in)
	var fe *helper.FieldValidationError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "classes", fe.Field)

	in = acme()
	in.Divisions = []string{"A", "a"}
	require.True(t, errors.As(CheckLists(in), &fe))
	assert.Equal(t, "divisions", fe.Field)
}

func TestSettings_CreateAndUpdate(t *testing.T) {
	s, _ := newSettings(t)
	ctx := context.Background()

	in := acme()
	in.Counters.FeeIDCount = 99
	inst, err := s.Create(ctx, "acme", in)
	require.NoError(t, err)
	assert.Equal(t, "acme", inst.ID)
	assert.Equal(t, "acme-public-school", inst.Slug)
	assert.Zero(t, inst.Counters.FeeIDCount)
	assert.Equal(t, model.KindSchool, inst.Kind)

	_, err = s.Create(ctx, "acme", acme())
	assert.ErrorIs(t, err, ErrInstitutionExists)

	_, err = NewCounters(s.Institutions).Next(ctx, "acme", CounterFeeID)
	require.NoError(t, err)

	got, err := s.Update(ctx, "acme", func(i *model.Institution) {
		i.Name = "Acme International"
		i.Slug = ""
		i.Counters.FeeIDCount = 0
		i.Theme.PrimaryColor = "#112233"
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-international", got.Slug)
	assert.Equal(t, int64(1), got.Counters.FeeIDCount, "counters untouched")
	assert.Equal(t, "#112233", got.Theme.PrimaryColor)

	_, err = s.Update(ctx, "acme", func(i *model.Institution) { i.Classes = append(i.Classes, "ukg") })
	require.Error(t, err)
	stored, err := s.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, stored.Classes, 3, "invalid update not saved")

	_, err = s.Update(ctx, "ghost", func(*model.Institution) {})
	assert.Error(t, err)
}

func TestSettings_Logo(t *testing.T) {
	s, gw := newSettings(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "acme", acme())
	require.NoError(t, err)

	blob := uploadService.Blob{Name: "logo.webp", Data: []byte("RIFF"), ContentType: "image/webp"}
	inst, err := s.SetLogo(ctx, "acme", blob)
	require.NoError(t, err)
	require.NotNil(t, inst.Logo)
	first := inst.Logo.Key
	assert.True(t, gw.Has(first))

	inst, err = s.SetLogo(ctx, "acme", uploadService.Blob{Name: "logo2.webp", Data: []byte("RIFF2"), ContentType: "image/webp"})
	require.NoError(t, err)
	assert.NotEqual(t, first, inst.Logo.Key)
	assert.False(t, gw.Has(first))

	gw.FailPut = func(string) error { return fiber.ErrBadGateway }
	_, err = s.SetLogo(ctx, "acme", blob)
	require.Error(t, err)
	gw.FailPut = nil
	stored, err := s.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, inst.Logo.Key, stored.Logo.Key)

	inst, err = s.RemoveLogo(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, inst.Logo)
	assert.Empty(t, gw.Keys())

	_, err = s.RemoveLogo(ctx, "acme")
	assert.NoError(t, err)
}
