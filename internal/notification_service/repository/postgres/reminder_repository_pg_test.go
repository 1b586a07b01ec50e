package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

var reminderCols = []string{"id", "name", "phone_number", "order_number", "initial_pickup_date", "reminder_sent_date",
	"expiration_date", "status", "acknowledgement", "sent_from_route", "expecting_reply", "last_updated"}

func sampleReminder(now time.Time) *domain.ReminderRecord {
	return domain.NewReminderRecord("r-1", domain.ReminderEntry{
		Name: "Alice", PhoneNumber: "+14445556666", OrderNumber: "1234", InitialPickupDate: "10/01/2025",
	}, now, domain.DefaultReminderExpiry)
}

func addReminderRow(rows *pgxmock.Rows, r *domain.ReminderRecord) *pgxmock.Rows {
	return rows.AddRow(r.ID, r.Name, r.PhoneNumber, r.OrderNumber, r.InitialPickupDate, r.ReminderSentDate,
		r.ExpirationDate, string(r.Status), string(r.Acknowledgement), r.SentFromRoute, r.ExpectingReply, r.LastUpdated)
}

func TestPgReminderRepository_Create(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgReminderRepository(mockPool, discardLogger())
	rec := sampleReminder(time.Date(2025, 11, 18, 15, 0, 0, 0, time.UTC))

	mockPool.ExpectExec(`INSERT INTO reminders`).
		WithArgs(rec.ID, rec.Name, rec.PhoneNumber, rec.OrderNumber, rec.InitialPickupDate, rec.ReminderSentDate,
			rec.ExpirationDate, "reminded", "PENDING", "/reminders", true, rec.LastUpdated).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), rec))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgReminderRepository_FindExpired(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgReminderRepository(mockPool, discardLogger())

	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	due := sampleReminder(now.Add(-31 * 24 * time.Hour))

	mockPool.ExpectQuery(`SELECT .* FROM reminders WHERE expiration_date < \$1 AND status = \$2`).
		WithArgs(now, "reminded").
		WillReturnRows(addReminderRow(mockPool.NewRows(reminderCols), due))

	got, err := repo.FindExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due, got[0])
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgReminderRepository_FindByOrderAndPhone(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgReminderRepository(mockPool, discardLogger())
	now := time.Date(2025, 11, 18, 15, 0, 0, 0, time.UTC)
	first := sampleReminder(now)
	second := sampleReminder(now)
	second.ID = "r-2"

	rows := mockPool.NewRows(reminderCols)
	addReminderRow(rows, first)
	addReminderRow(rows, second)
	mockPool.ExpectQuery(`SELECT .* FROM reminders WHERE order_number = \$1 AND phone_number = \$2`).
		WithArgs("1234", "+14445556666").
		WillReturnRows(rows)
	mockPool.ExpectQuery(`SELECT .* FROM reminders WHERE phone_number = \$1`).
		WithArgs("+14445550000").
		WillReturnError(errors.New("timeout"))

	got, err := repo.FindByOrderAndPhone(context.Background(), "1234", "+14445556666")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = repo.FindByPhone(context.Background(), "+14445550000")
	assert.ErrorContains(t, err, "finding reminders by phone")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgReminderRepository_MarkExpired(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgReminderRepository(mockPool, discardLogger())
	at := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	updateSQL := `UPDATE reminders SET status = \$1, last_updated = \$2 WHERE id = \$3 AND status = \$4`

	mockPool.ExpectExec(updateSQL).WithArgs("expired", at, "r-1", "reminded").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectExec(updateSQL).WithArgs("expired", at, "r-1", "reminded").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	transitioned, err := repo.MarkExpired(context.Background(), "r-1", at)
	require.NoError(t, err)
	assert.True(t, transitioned)

	transitioned, err = repo.MarkExpired(context.Background(), "r-1", at)
	require.NoError(t, err)
	assert.False(t, transitioned)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgReminderRepository_DeleteAndAcknowledge(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()
	repo := NewPgReminderRepository(mockPool, discardLogger())
	at := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectExec(`DELETE FROM reminders WHERE id = \$1`).WithArgs("r-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mockPool.ExpectExec(`DELETE FROM reminders WHERE id = \$1`).WithArgs("r-9").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mockPool.ExpectExec(`UPDATE reminders SET acknowledgement = \$1, last_updated = \$2 WHERE id = \$3`).
		WithArgs("PICKUP", at, "r-2").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.Delete(context.Background(), "r-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "r-9"), domain.ErrNotFound)
	assert.NoError(t, repo.SetAcknowledgement(context.Background(), "r-2", domain.AcknowledgementPickup, at))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
