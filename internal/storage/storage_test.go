package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wedding-invitation/internal/models"
)

var baseTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newRSVP(phone string, attendance models.Attendance, guests int, offset time.Duration) *models.RSVP {
	return &models.RSVP{
		Name:       "Guest " + phone,
		Phone:      phone,
		Attendance: attendance,
		Guests:     guests,
		CreatedAt:  baseTime.Add(offset),
	}
}

// runStoreContract exercises behaviour every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("empty stats", func(t *testing.T) {
		s := newStore(t)
		stats, err := s.RSVPStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{}, stats)
	})

	t.Run("insert assigns id and rejects duplicate phone", func(t *testing.T) {
		s := newStore(t)
		first := newRSVP("6281234567890", models.AttendanceAttending, 2, 0)
		require.NoError(t, s.InsertRSVP(ctx, first))
		assert.NotEmpty(t, first.ID)

		dup := newRSVP("6281234567890", models.AttendanceMaybe, 1, time.Minute)
		require.ErrorIs(t, s.InsertRSVP(ctx, dup), ErrDuplicatePhone)

		all, err := s.ListRSVPs(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("concurrent inserts with one phone keep a single record", func(t *testing.T) {
		s := newStore(t)
		const writers = 20

		errs := make([]error, writers)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				errs[i] = s.InsertRSVP(ctx, newRSVP("6281234567890", models.AttendanceAttending, 1, time.Duration(i)*time.Second))
			}()
		}
		close(start)
		wg.Wait()

		inserted := 0
		for _, err := range errs {
			if err == nil {
				inserted++
				continue
			}
			require.ErrorIs(t, err, ErrDuplicatePhone)
		}
		assert.Equal(t, 1, inserted)

		all, err := s.ListRSVPs(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("list newest first with filter", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081100000001", models.AttendanceAttending, 2, 0)))
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081100000002", models.AttendanceMaybe, 1, time.Minute)))
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081100000003", models.AttendanceAttending, 3, 2*time.Minute)))

		all, err := s.ListRSVPs(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "081100000003", all[0].Phone)
		assert.Equal(t, "081100000001", all[2].Phone)

		attending, err := s.ListRSVPs(ctx, models.AttendanceAttending)
		require.NoError(t, err)
		require.Len(t, attending, 2)
		assert.Equal(t, "081100000003", attending[0].Phone)
	})

	t.Run("replace keeps createdAt and guards phone", func(t *testing.T) {
		s := newStore(t)
		a := newRSVP("081200000001", models.AttendanceAttending, 2, 0)
		b := newRSVP("081200000002", models.AttendanceMaybe, 1, time.Minute)
		require.NoError(t, s.InsertRSVP(ctx, a))
		require.NoError(t, s.InsertRSVP(ctx, b))

		changed := *a
		changed.Guests = 5
		changed.Attendance = models.AttendanceNotAttending
		changed.CreatedAt = baseTime.Add(time.Hour)
		got, err := s.ReplaceRSVP(ctx, &changed)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Guests)
		assert.Equal(t, models.AttendanceNotAttending, got.Attendance)
		assert.True(t, got.CreatedAt.Equal(a.CreatedAt))

		steal := *a
		steal.Phone = b.Phone
		_, err = s.ReplaceRSVP(ctx, &steal)
		require.ErrorIs(t, err, ErrDuplicatePhone)

		missing := *a
		missing.ID = "000000000000000000000000"
		_, err = s.ReplaceRSVP(ctx, &missing)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete returns record then not found", func(t *testing.T) {
		s := newStore(t)
		r := newRSVP("081300000001", models.AttendanceAttending, 2, 0)
		require.NoError(t, s.InsertRSVP(ctx, r))

		deleted, err := s.DeleteRSVP(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.Phone, deleted.Phone)

		_, err = s.GetRSVP(ctx, r.ID)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.DeleteRSVP(ctx, r.ID)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetRSVP(ctx, "not-an-id")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stats aggregate attendance and guests", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081400000001", models.AttendanceAttending, 2, 0)))
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081400000002", models.AttendanceAttending, 3, time.Second)))
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081400000003", models.AttendanceNotAttending, 1, 2*time.Second)))
		require.NoError(t, s.InsertRSVP(ctx, newRSVP("081400000004", models.AttendanceMaybe, 4, 3*time.Second)))

		stats, err := s.RSVPStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{Total: 4, Attending: 2, NotAttending: 1, Maybe: 1, TotalGuests: 10}, stats)
	})

	t.Run("wishes newest first", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertWish(ctx, &models.Wish{Name: "Ani", Message: "Bahagia selalu", CreatedAt: baseTime}))
		budi := &models.Wish{Name: "Budi", Message: "Selamat!", CreatedAt: baseTime.Add(time.Minute)}
		require.NoError(t, s.InsertWish(ctx, budi))
		assert.NotEmpty(t, budi.ID)

		wishes, err := s.ListWishes(ctx)
		require.NoError(t, err)
		require.Len(t, wishes, 2)
		assert.Equal(t, "Budi", wishes[0].Name)
	})
}

func TestFileStoreMemory(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := NewFileStore("", zerolog.Nop())
		require.NoError(t, err)
		return s
	})
}

func TestFileStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "wedding.json")

	s, err := NewFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	r := newRSVP("6281234567890", models.AttendanceAttending, 2, 0)
	require.NoError(t, s.InsertRSVP(ctx, r))
	require.NoError(t, s.InsertWish(ctx, &models.Wish{Name: "Budi", Message: "Selamat!", CreatedAt: baseTime}))
	require.NoError(t, s.Close(ctx))

	reopened, err := NewFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	got, err := reopened.GetRSVP(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "6281234567890", got.Phone)

	wishes, err := reopened.ListWishes(ctx)
	require.NoError(t, err)
	assert.Len(t, wishes, 1)

	// uniqueness survives a restart
	require.ErrorIs(t, reopened.InsertRSVP(ctx, newRSVP("6281234567890", models.AttendanceMaybe, 1, time.Minute)), ErrDuplicatePhone)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wedding.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path, zerolog.Nop())
	require.Error(t, err)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	runStoreContract(t, func(t *testing.T) Store {
		ctx := context.Background()
		dbName := fmt.Sprintf("wedding_test_%d", time.Now().UnixNano())
		s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: dbName, Timeout: 5 * time.Second}, zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.client.Database(dbName).Drop(ctx)
			_ = s.Close(ctx)
		})
		return s
	})
}

func TestRSVPIndexErrorNamesDuplicatePhones(t *testing.T) {
	dup := mongo.CommandError{Code: 11000, Message: "E11000 duplicate key error collection: wedding.rsvps index: phone_unique dup key"}
	err := rsvpIndexError(dup)
	assert.Contains(t, err.Error(), "duplicate phone numbers")
	assert.Contains(t, err.Error(), phoneIndexName)
	var cmdErr mongo.CommandError
	assert.True(t, errors.As(err, &cmdErr))

	other := rsvpIndexError(errors.New("not authorized"))
	assert.NotContains(t, other.Error(), "duplicate phone numbers")
}

func TestMongoStoreRefusesExistingDuplicatePhones(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	dbName := fmt.Sprintf("wedding_test_dup_%d", time.Now().UnixNano())
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	legacy := client.Database(dbName).Collection(rsvpCollection)
	_, err = legacy.InsertMany(ctx, []any{
		bson.D{{Key: "name", Value: "Sari"}, {Key: "phone", Value: "6281234567890"}},
		bson.D{{Key: "name", Value: "Sari lagi"}, {Key: "phone", Value: "6281234567890"}},
	})
	require.NoError(t, err)

	_, err = NewMongoStore(ctx, MongoConfig{URI: uri, Database: dbName, Timeout: 5 * time.Second}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate phone numbers")
}

func TestDatabaseFromURI(t *testing.T) {
	assert.Equal(t, "wedding-invitation", databaseFromURI("mongodb://localhost:27017/wedding-invitation"))
	assert.Equal(t, "rsvp", databaseFromURI("mongodb+srv://u:p@cluster.example.net/rsvp?retryWrites=true"))
	assert.Equal(t, DefaultMongoDatabase, databaseFromURI("mongodb://localhost:27017"))
	assert.Equal(t, DefaultMongoDatabase, databaseFromURI("mongodb://localhost:27017/"))
}
