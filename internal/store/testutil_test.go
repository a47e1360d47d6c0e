package store

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"qrdine-backend/internal/db"
	"qrdine-backend/internal/menu"
	"qrdine-backend/internal/model"
)

// newTestStore opens a fresh in-memory database. Each test gets its own
// named shared-cache DB so GORM's connection pool sees the same data.
func newTestStore(t *testing.T) (Store, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	return NewGormStore(gdb, menu.NewGormCatalog(gdb), 10*time.Minute), gdb
}

func seedTenant(t *testing.T, gdb *gorm.DB, slug string) model.Tenant {
	t.Helper()
	tenant := model.Tenant{Name: slug, Slug: slug}
	require.NoError(t, gdb.Create(&tenant).Error)
	return tenant
}

func seedMenuItem(t *testing.T, gdb *gorm.DB, tenantID uint, name string, price float64, available bool) model.MenuItem {
	t.Helper()
	item := model.MenuItem{TenantID: tenantID, Name: name, Price: price, Available: available}
	require.NoError(t, gdb.Create(&item).Error)
	return item
}

func countActiveSessions(t *testing.T, gdb *gorm.DB, tableID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&model.DiningSession{}).
		Where("table_id = ? AND status = ?", tableID, model.SessionActive).
		Count(&n).Error)
	return n
}
