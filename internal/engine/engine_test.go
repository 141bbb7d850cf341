package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"glasswork/internal/config"
	"glasswork/internal/db"
	"glasswork/internal/domain"
	"glasswork/internal/engine"
	"glasswork/internal/migrate"
	"glasswork/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	eng.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func TestCurrentStatusDefaultsToOffline(t *testing.T) {
	env := newTestEnv(t)
	log, err := env.Engine.CurrentStatus(env.Ctx)
	if err != nil {
		t.Fatalf("current status: %v", err)
	}
	if log.StatusText != engine.DefaultStatus {
		t.Fatalf("expected %q on empty log, got %q", engine.DefaultStatus, log.StatusText)
	}
	open, err := env.Engine.IsOpenToWork(env.Ctx)
	if err != nil || open {
		t.Fatalf("expected closed by default, open=%v err=%v", open, err)
	}
}

func TestSetStatusWritesLogAndFlag(t *testing.T) {
	env := newTestEnv(t)
	log, err := env.Engine.SetStatus(env.Ctx, "OPEN TO WORK", "tester")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if log.ID == 0 || !log.IsActive {
		t.Fatalf("expected active log entry, got %+v", log)
	}
	profile, err := env.Engine.Profile(env.Ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !profile.IsLookingForWork {
		t.Fatalf("expected availability flag set")
	}

	log, err = env.Engine.SetStatus(env.Ctx, "CURRENTLY BUSY", "tester")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	profile, _ = env.Engine.Profile(env.Ctx)
	if profile.IsLookingForWork {
		t.Fatalf("expected availability flag cleared")
	}
	current, err := env.Engine.CurrentStatus(env.Ctx)
	if err != nil || current.StatusText != "CURRENTLY BUSY" {
		t.Fatalf("current status: %+v err=%v", current, err)
	}
}

func TestSetStatusSameValueIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	first, err := env.Engine.SetStatus(env.Ctx, "TRAVELLING", "tester")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	second, err := env.Engine.SetStatus(env.Ctx, "TRAVELLING", "tester")
	if err != nil {
		t.Fatalf("set status again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected no new log row, got %d then %d", first.ID, second.ID)
	}
	logs, err := env.Engine.StatusHistory(env.Ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
}

func TestSetStatusRejectsEmpty(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.SetStatus(env.Ctx, "   ", "tester")
	var ve *engine.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	logs, _ := env.Engine.StatusHistory(env.Ctx, 10)
	if len(logs) != 0 {
		t.Fatalf("expected no log rows, got %d", len(logs))
	}
}

func TestStatusHistoryOrderAndLimit(t *testing.T) {
	env := newTestEnv(t)
	for _, v := range []string{"OFFLINE", "OPEN TO WORK", "CURRENTLY BUSY"} {
		if _, err := env.Engine.SetStatus(env.Ctx, v, "tester"); err != nil {
			t.Fatalf("set %s: %v", v, err)
		}
	}
	logs, err := env.Engine.StatusHistory(env.Ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].StatusText != "CURRENTLY BUSY" || logs[1].StatusText != "OPEN TO WORK" {
		t.Fatalf("expected newest first, got %q then %q", logs[0].StatusText, logs[1].StatusText)
	}

	if _, err := env.Engine.StatusHistory(env.Ctx, 0); err == nil {
		t.Fatalf("expected validation error for limit 0")
	}
	var ve *engine.ValidationError
	if _, err := env.Engine.StatusHistory(env.Ctx, -3); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for negative limit, got %v", err)
	}
}

func TestSubscribeDeliversStatusChanges(t *testing.T) {
	env := newTestEnv(t)
	sub := env.Engine.Subscribe()
	defer sub.Close()

	want, err := env.Engine.SetStatus(env.Ctx, "OPEN TO WORK", "tester")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	select {
	case got := <-sub.C:
		if got.ID != want.ID || got.StatusText != want.StatusText {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no delivery")
	}

	// idempotent set must not publish
	if _, err := env.Engine.SetStatus(env.Ctx, "OPEN TO WORK", "tester"); err != nil {
		t.Fatalf("repeat set: %v", err)
	}
	select {
	case got := <-sub.C:
		t.Fatalf("unexpected delivery %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStatusFeedDoesNotRedeliverLocalWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(env.Ctx)
	defer cancel()
	sub := env.Engine.Subscribe()
	defer sub.Close()
	env.Engine.StartStatusFeed(ctx, 25*time.Millisecond)

	want, err := env.Engine.SetStatus(env.Ctx, "OPEN TO WORK", "tester")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	select {
	case got := <-sub.C:
		if got.ID != want.ID {
			t.Fatalf("expected record %d, got %d", want.ID, got.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no delivery")
	}

	// the feed poller sees the same row past its cursor; it must not go out again
	select {
	case got := <-sub.C:
		t.Fatalf("record %d delivered twice: %+v", want.ID, got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestStatusFeedDeliversOtherProcessWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(env.Ctx)
	defer cancel()
	sub := env.Engine.Subscribe()
	defer sub.Close()
	env.Engine.StartStatusFeed(ctx, 25*time.Millisecond)

	// a row written straight to the store, as a second process would
	tx, err := env.Engine.DB.BeginTx(env.Ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	want, err := env.Engine.Repo.InsertStatusTx(env.Ctx, tx, domain.StatusLog{
		CreatedAt:  "2024-01-01T00:00:01Z",
		StatusText: "TRAVELLING",
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	select {
	case got := <-sub.C:
		if got.ID != want.ID || got.StatusText != "TRAVELLING" {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no delivery from feed")
	}
	select {
	case got := <-sub.C:
		t.Fatalf("record %d delivered twice: %+v", want.ID, got)
	case <-time.After(150 * time.Millisecond):
	}
}

func mustCreateProject(t *testing.T, env testEnv, title string) int64 {
	t.Helper()
	p, err := env.Engine.CreateProject(env.Ctx, engine.ProjectCreateOptions{
		Title:       title,
		Description: title + " description",
		ActorID:     "tester",
	})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return p.ID
}

func assertOrder(t *testing.T, env testEnv, wantTitles ...string) {
	t.Helper()
	items, err := env.Engine.ListProjects(env.Ctx)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(items) != len(wantTitles) {
		t.Fatalf("expected %d projects, got %d", len(wantTitles), len(items))
	}
	for i, p := range items {
		if p.Title != wantTitles[i] {
			t.Fatalf("position %d: expected %q, got %q", i+1, wantTitles[i], p.Title)
		}
		if p.DisplayOrder != i+1 {
			t.Fatalf("position %d: expected order %d, got %d", i+1, i+1, p.DisplayOrder)
		}
	}
}

func TestCreateProjectAppendsToOrder(t *testing.T) {
	env := newTestEnv(t)
	mustCreateProject(t, env, "alpha")
	mustCreateProject(t, env, "beta")
	mustCreateProject(t, env, "gamma")
	assertOrder(t, env, "alpha", "beta", "gamma")
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	cases := []engine.ProjectCreateOptions{
		{Title: "", Description: "desc"},
		{Title: "   ", Description: "desc"},
		{Title: "ok", Description: ""},
		{Title: "ok", Description: "desc", GithubURL: "ftp://example.com/repo"},
		{Title: "ok", Description: "desc", LiveURL: "not a url"},
	}
	for _, opts := range cases {
		opts.ActorID = "tester"
		_, err := env.Engine.CreateProject(env.Ctx, opts)
		var ve *engine.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("opts %+v: expected validation error, got %v", opts, err)
		}
	}
	items, err := env.Engine.ListProjects(env.Ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no rows written, got %d", len(items))
	}
}

func TestMoveProjectSwapsNeighbours(t *testing.T) {
	env := newTestEnv(t)
	mustCreateProject(t, env, "alpha")
	b := mustCreateProject(t, env, "beta")
	mustCreateProject(t, env, "gamma")

	items, err := env.Engine.MoveProject(env.Ctx, b, engine.MoveUp, "tester")
	if err != nil {
		t.Fatalf("move up: %v", err)
	}
	if items[0].Title != "beta" {
		t.Fatalf("expected beta first, got %q", items[0].Title)
	}
	assertOrder(t, env, "beta", "alpha", "gamma")

	if _, err := env.Engine.MoveProject(env.Ctx, b, engine.MoveDown, "tester"); err != nil {
		t.Fatalf("move down: %v", err)
	}
	assertOrder(t, env, "alpha", "beta", "gamma")
}

func TestMoveProjectClampsAtBoundaries(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateProject(t, env, "alpha")
	mustCreateProject(t, env, "beta")
	c := mustCreateProject(t, env, "gamma")

	if _, err := env.Engine.MoveProject(env.Ctx, a, engine.MoveUp, "tester"); err != nil {
		t.Fatalf("move first up: %v", err)
	}
	if _, err := env.Engine.MoveProject(env.Ctx, c, engine.MoveDown, "tester"); err != nil {
		t.Fatalf("move last down: %v", err)
	}
	assertOrder(t, env, "alpha", "beta", "gamma")
}

func TestMoveProjectRejectsBadDirection(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateProject(t, env, "alpha")
	_, err := env.Engine.MoveProject(env.Ctx, a, engine.MoveDirection("sideways"), "tester")
	var ve *engine.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMoveProjectUnknownID(t *testing.T) {
	env := newTestEnv(t)
	mustCreateProject(t, env, "alpha")
	_, err := env.Engine.MoveProject(env.Ctx, 999, engine.MoveUp, "tester")
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteProjectClosesGap(t *testing.T) {
	env := newTestEnv(t)
	mustCreateProject(t, env, "alpha")
	b := mustCreateProject(t, env, "beta")
	mustCreateProject(t, env, "gamma")

	if err := env.Engine.DeleteProject(env.Ctx, b, "tester"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertOrder(t, env, "alpha", "gamma")

	// next create lands at the end of the compacted order
	mustCreateProject(t, env, "delta")
	assertOrder(t, env, "alpha", "gamma", "delta")
}

func corruptOrders(t *testing.T, env testEnv, orders map[int64]int) {
	t.Helper()
	tx, err := env.Engine.DB.BeginTx(env.Ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for id, order := range orders {
		if err := env.Engine.Repo.SetDisplayOrderTx(env.Ctx, tx, id, order); err != nil {
			t.Fatalf("set order: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestReconcileRepairsCorruptedOrder(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateProject(t, env, "alpha")
	b := mustCreateProject(t, env, "beta")
	c := mustCreateProject(t, env, "gamma")

	// gaps and duplicates
	corruptOrders(t, env, map[int64]int{a: 7, b: 7, c: 3})

	items, err := env.Engine.ReconcileProjects(env.Ctx, "tester")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	for i, p := range items {
		if p.DisplayOrder != i+1 {
			t.Fatalf("position %d: expected order %d, got %d", i, i+1, p.DisplayOrder)
		}
	}

	// fixed point: reconciling a dense order changes nothing
	again, err := env.Engine.ReconcileProjects(env.Ctx, "tester")
	if err != nil {
		t.Fatalf("reconcile again: %v", err)
	}
	for i := range items {
		if again[i].ID != items[i].ID || again[i].DisplayOrder != items[i].DisplayOrder {
			t.Fatalf("expected fixed point, got %+v vs %+v", again[i], items[i])
		}
	}
}

func TestMoveProjectRepairsCorruptionFirst(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateProject(t, env, "alpha")
	b := mustCreateProject(t, env, "beta")
	mustCreateProject(t, env, "gamma")

	corruptOrders(t, env, map[int64]int{a: 10, b: 10})

	if _, err := env.Engine.MoveProject(env.Ctx, b, engine.MoveUp, "tester"); err != nil {
		t.Fatalf("move on corrupted order: %v", err)
	}
	items, err := env.Engine.ListProjects(env.Ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, p := range items {
		if p.DisplayOrder != i+1 {
			t.Fatalf("expected dense order after move, got %+v", items)
		}
	}
}

func TestUpdateProjectKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateProject(t, env, "alpha")
	mustCreateProject(t, env, "beta")

	title := "alpha prime"
	p, err := env.Engine.UpdateProject(env.Ctx, a, engine.ProjectUpdateOptions{Title: &title, ActorID: "tester"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Title != title || p.DisplayOrder != 1 {
		t.Fatalf("unexpected project %+v", p)
	}

	blank := "  "
	if _, err := env.Engine.UpdateProject(env.Ctx, a, engine.ProjectUpdateOptions{Title: &blank}); err == nil {
		t.Fatalf("expected validation error for blank title")
	}
}

func TestMessageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	m, err := env.Engine.SubmitMessage(env.Ctx, "Ada", "ada@example.com", "hello there")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.IsRead {
		t.Fatalf("expected unread on arrival")
	}

	if _, err := env.Engine.SubmitMessage(env.Ctx, "Bad", "not-an-email", "hi"); err == nil {
		t.Fatalf("expected validation error for bad email")
	}

	unread, err := env.Engine.ListMessages(env.Ctx, true)
	if err != nil || len(unread) != 1 {
		t.Fatalf("unread list: %v (%d)", err, len(unread))
	}

	read, err := env.Engine.MarkMessageRead(env.Ctx, m.ID, true, "tester")
	if err != nil || !read.IsRead {
		t.Fatalf("mark read: %+v err=%v", read, err)
	}
	unread, _ = env.Engine.ListMessages(env.Ctx, true)
	if len(unread) != 0 {
		t.Fatalf("expected empty unread list")
	}

	if err := env.Engine.DeleteMessage(env.Ctx, m.ID, "tester"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.Engine.DeleteMessage(env.Ctx, m.ID, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t)
	bio := "I build things."
	github := "https://github.com/someone"
	p, err := env.Engine.UpdateProfile(env.Ctx, engine.ProfileUpdateOptions{
		Bio:       &bio,
		GithubURL: &github,
		ActorID:   "tester",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if p.Bio != bio || p.GithubURL != github {
		t.Fatalf("unexpected profile %+v", p)
	}

	bad := "nope"
	if _, err := env.Engine.UpdateProfile(env.Ctx, engine.ProfileUpdateOptions{LinkedinURL: &bad}); err == nil {
		t.Fatalf("expected validation error for bad URL")
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	key, raw, err := env.Engine.CreateAPIKey(env.Ctx, "admin", "laptop")
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	if raw == "" || key.KeyHash == raw {
		t.Fatalf("raw key must be returned unhashed exactly once")
	}
	got, err := env.Engine.Repo.GetAPIKeyByHash(env.Ctx, repo.HashAPIKey(raw))
	if err != nil || got.ActorID != "admin" {
		t.Fatalf("lookup by hash: %+v err=%v", got, err)
	}
	if err := env.Engine.RevokeAPIKey(env.Ctx, key.ID, "admin"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := env.Engine.Repo.GetAPIKeyByHash(env.Ctx, repo.HashAPIKey(raw)); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found after revoke, got %v", err)
	}
}

func TestAdminMutationsAppendAuditEvents(t *testing.T) {
	env := newTestEnv(t)

	id := mustCreateProject(t, env, "alpha")
	title := "alpha prime"
	if _, err := env.Engine.UpdateProject(env.Ctx, id, engine.ProjectUpdateOptions{Title: &title, ActorID: "tester"}); err != nil {
		t.Fatalf("update project: %v", err)
	}

	m, err := env.Engine.SubmitMessage(env.Ctx, "Ada", "ada@example.com", "hello")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.Engine.MarkMessageRead(env.Ctx, m.ID, true, "tester"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := env.Engine.DeleteMessage(env.Ctx, m.ID, "tester"); err != nil {
		t.Fatalf("delete message: %v", err)
	}

	key, _, err := env.Engine.CreateAPIKey(env.Ctx, "tester", "laptop")
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	if err := env.Engine.RevokeAPIKey(env.Ctx, key.ID, "tester"); err != nil {
		t.Fatalf("revoke key: %v", err)
	}

	events, err := env.Engine.RecentEvents(env.Ctx, 50, 0, "")
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	have := make(map[string]bool, len(events))
	for _, evt := range events {
		have[evt.Type] = true
	}
	for _, want := range []string{
		"project.created",
		"project.updated",
		"message.read",
		"message.deleted",
		"apikey.created",
		"apikey.revoked",
	} {
		if !have[want] {
			t.Fatalf("missing %s audit event, have %v", want, have)
		}
	}
}
