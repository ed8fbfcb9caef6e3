package audit

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aidanlsb/ntn/internal/testutil"
	"github.com/aidanlsb/ntn/internal/txn"
)

func tx(id string, records ...string) txn.Transaction {
	t := txn.Transaction{ID: id, SpaceID: "sp"}
	for _, r := range records {
		t.Operations = append(t.Operations, txn.Operation{
			Pointer: txn.Pointer{Table: "block", ID: r},
			Command: txn.CommandUpdate,
			Path:    []string{"properties"},
		})
	}
	return t
}

func TestLogAndRead(t *testing.T) {
	l := New(t.TempDir(), true)
	times := []time.Time{
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	i := 0
	l.now = func() time.Time { tm := times[i]; i++; return tm }

	if err := l.LogTransaction(tx("t1", "a", "b"), nil); err != nil {
		t.Fatal(err)
	}
	if err := l.LogTransaction(tx("t2", "b"), errors.New("boom")); err != nil {
		t.Fatal(err)
	}

	all, err := l.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].TransactionID != "t1" || len(all[0].Operations) != 2 {
		t.Fatalf("unexpected entries %+v", all)
	}
	if all[1].Error != "boom" || all[0].Error != "" {
		t.Errorf("errors not recorded: %+v", all)
	}
	if all[0].Operations[0].Command != "update" || all[0].Operations[0].Table != "block" {
		t.Errorf("op = %+v", all[0].Operations[0])
	}

	since, _ := l.ReadSince(times[1])
	if len(since) != 1 || since[0].TransactionID != "t2" {
		t.Errorf("ReadSince = %+v", since)
	}
	forA, _ := l.ReadForRecord("a")
	if len(forA) != 1 {
		t.Errorf("ReadForRecord(a) = %+v", forA)
	}
	forB, _ := l.ReadForRecord("b")
	if len(forB) != 2 {
		t.Errorf("ReadForRecord(b) = %+v", forB)
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	l := New(t.TempDir(), true)
	if err := l.LogTransaction(tx("t1", "a"), nil); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("not json\n\n")
	_ = f.Close()

	entries, err := l.Read()
	if err != nil || len(entries) != 1 {
		t.Errorf("entries = %+v, err = %v", entries, err)
	}
}

func TestDisabled(t *testing.T) {
	l := New(t.TempDir(), false)
	if err := l.LogTransaction(tx("t1", "a"), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Errorf("disabled logger wrote %s", l.Path())
	}
	entries, err := l.Read()
	if err != nil || entries != nil {
		t.Errorf("entries = %+v, err = %v", entries, err)
	}
}

func TestWrap(t *testing.T) {
	api := testutil.NewFakeAPI(t, "")
	l := New(t.TempDir(), true)

	if got := Wrap(api, New(t.TempDir(), false)); got != api {
		t.Error("disabled logger should not wrap")
	}

	wrapped := Wrap(api, l)
	if err := wrapped.SaveTransactions(context.Background(), tx("t1", "a"), tx("t2", "b")); err != nil {
		t.Fatal(err)
	}
	api.Err = errors.New("offline")
	if err := wrapped.SaveTransactions(context.Background(), tx("t3", "c")); err == nil {
		t.Fatal("expected error to pass through")
	}

	entries, _ := l.Read()
	if len(entries) != 3 || entries[2].Error != "offline" {
		t.Errorf("entries = %+v", entries)
	}
	if len(api.Saved) != 2 {
		t.Errorf("saved = %d", len(api.Saved))
	}
}
