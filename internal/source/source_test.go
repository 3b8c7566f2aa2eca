package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const roomsCSV = "ruang,kapasitas,gedung\n" +
	"A101,50,A\n" +
	"a102 ,NA,A\n"

const sectionsCSV = "ruang,prodi,hari,sesi,peserta,th_ajaran\n" +
	"A101,TI,SENIN,1,25,2023/2024\n" +
	"A102,SI,SELASA,2,,2023/2024\n"

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV([]byte(roomsCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "A101", rows[0]["ruang"])
	require.Equal(t, "50", rows[0]["kapasitas"])
	require.Equal(t, "a102 ", rows[1]["ruang"])
	require.Nil(t, rows[1]["kapasitas"])
}

func TestParseCSVHeaderOnly(t *testing.T) {
	for _, data := range []string{
		"ruang,prodi,hari,sesi,peserta,th_ajaran\n",
		"ruang,kapasitas",
		"ruang,kapasitas\r\n\r\n",
	} {
		rows, err := ParseCSV([]byte(data))
		require.NoError(t, err, data)
		require.NotNil(t, rows)
		require.Empty(t, rows)
	}
}

func TestParseCSVRejectsBrokenInput(t *testing.T) {
	_, err := ParseCSV(nil)
	require.Error(t, err)

	_, err = ParseCSV([]byte("ruang,kapasitas\nA101,50,extra,cells\n"))
	require.Error(t, err)
}

func TestProviderErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ProviderError{Source: "sheet", Sheet: SheetRooms, Err: cause})
	require.ErrorIs(t, err, ErrProviderFailure)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "sheet ruang")

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "sheet", perr.Source)
}

func TestResolveSheet(t *testing.T) {
	require.Equal(t, SheetSections, ResolveSheet(" MATKUL "))
	require.Equal(t, SheetSections, ResolveSheet("sections"))
	require.Equal(t, SheetRooms, ResolveSheet("ruang"))
	require.Equal(t, SheetRooms, ResolveSheet("unknown"))
}

func TestSheetProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rooms":
			_, _ = w.Write([]byte(roomsCSV))
		case "/sections":
			_, _ = w.Write([]byte(sectionsCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	provider := NewSheetProvider(srv.URL+"/rooms", srv.URL+"/sections", 5*time.Second, 0, zap.NewNop())
	tables, err := provider.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tables.Rooms, 2)
	require.Len(t, tables.Sections, 2)
	require.Equal(t, "SENIN", tables.Sections[0]["hari"])

	rows, err := provider.FetchSheet(context.Background(), "matkul")
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestSheetProviderFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rooms":
			_, _ = w.Write([]byte(roomsCSV))
		case "/broken":
			_, _ = w.Write([]byte("a,b\n1,2,3\n"))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	provider := NewSheetProvider(srv.URL+"/rooms", srv.URL+"/missing", 5*time.Second, 0, zap.NewNop())
	_, err := provider.Fetch(context.Background())
	require.ErrorIs(t, err, ErrProviderFailure)
	require.Contains(t, err.Error(), "status 403")

	provider = NewSheetProvider(srv.URL+"/rooms", srv.URL+"/broken", 5*time.Second, 0, zap.NewNop())
	_, err = provider.Fetch(context.Background())
	require.ErrorIs(t, err, ErrProviderFailure)

	srv.Close()
	_, err = provider.FetchSheet(context.Background(), SheetRooms)
	require.ErrorIs(t, err, ErrProviderFailure)
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	roomsPath := filepath.Join(dir, "ruang.csv")
	sectionsPath := filepath.Join(dir, "matkul.csv")
	require.NoError(t, os.WriteFile(roomsPath, []byte(roomsCSV), 0o644))
	require.NoError(t, os.WriteFile(sectionsPath, []byte(sectionsCSV), 0o644))

	tables, err := NewFileProvider(roomsPath, sectionsPath).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tables.Rooms, 2)
	require.Len(t, tables.Sections, 2)

	emptyPath := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(emptyPath, []byte("ruang,prodi,hari,sesi,peserta,th_ajaran\n"), 0o644))
	tables, err = NewFileProvider(roomsPath, emptyPath).Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, tables.Sections)

	_, err = NewFileProvider(roomsPath, filepath.Join(dir, "missing.csv")).Fetch(context.Background())
	require.ErrorIs(t, err, ErrProviderFailure)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPostgresProviderFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM utilization.ruang`)).
		WillReturnRows(sqlmock.NewRows([]string{"ruang", "kapasitas"}).
			AddRow("A101", int64(50)).
			AddRow([]byte("A102"), nil))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM utilization.matkul`)).
		WillReturnRows(sqlmock.NewRows([]string{"ruang", "prodi", "hari", "sesi", "peserta", "th_ajaran"}).
			AddRow("A101", "TI", "SENIN", "1", int64(25), "2023/2024"))

	provider := NewPostgresProvider(db, "utilization", zap.NewNop())
	tables, err := provider.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, tables.Rooms, 2)
	require.Equal(t, "A102", tables.Rooms[1]["ruang"])
	require.Nil(t, tables.Rooms[1]["kapasitas"])
	require.Equal(t, int64(25), tables.Sections[0]["peserta"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProviderQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM utilization.ruang`)).
		WillReturnError(errors.New("relation does not exist"))

	provider := NewPostgresProvider(db, "utilization", zap.NewNop())
	_, err = provider.Fetch(context.Background())
	require.ErrorIs(t, err, ErrProviderFailure)
	require.Contains(t, err.Error(), "relation does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}
