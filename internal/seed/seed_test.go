package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/pc-part-shop/internal/db/dbtest"
	"github.com/appdotbuilder/pc-part-shop/internal/hash"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

func TestRun_LoadsDemoData(t *testing.T) {
	gdb := dbtest.New(t)

	sum, err := Run(t.Context(), gdb, Options{ExtraCustomers: 3})
	require.NoError(t, err)
	assert.Equal(t, Summary{
		{Entity: "users", Created: 5},
		{Entity: "categories", Created: 6},
		{Entity: "products", Created: 14},
	}, sum)

	var admin models.User
	require.NoError(t, gdb.Where("email = ?", AdminEmail).First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.True(t, hash.CheckPassword(admin.PasswordHash, DefaultPassword))

	var featured int64
	require.NoError(t, gdb.Model(&models.Product{}).Where("is_featured = ?", true).Count(&featured).Error)
	assert.Equal(t, int64(4), featured)

	var p models.Product
	require.NoError(t, gdb.Preload("Category").Where("sku = ?", "GPU-AMD-7800XT").First(&p).Error)
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, "469.99", p.EffectivePrice().StringFixed(2))
	assert.Equal(t, "graphics-cards", p.Category.Slug)
	assert.Equal(t, "16GB GDDR6", p.Specifications["memory"])
}

func TestRun_Idempotent(t *testing.T) {
	gdb := dbtest.New(t)

	_, err := Run(t.Context(), gdb, Options{Password: "secret123"})
	require.NoError(t, err)
	sum, err := Run(t.Context(), gdb, Options{Password: "secret123"})
	require.NoError(t, err)

	assert.Zero(t, sum.Created())
	assert.Equal(t, Row{Entity: "products", Existing: 14}, sum[2])

	var n int64
	require.NoError(t, gdb.Model(&models.Product{}).Count(&n).Error)
	assert.Equal(t, int64(14), n)
}
