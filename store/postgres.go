package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/utils"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implements Store on top of database/sql and lib/pq.
type Postgres struct {
	db *sql.DB // nil inside a transaction
	q  dbtx
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, q: db}
}

var _ Store = (*Postgres)(nil)

func (s *Postgres) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Postgres) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.inTx(ctx, func(p *Postgres) error { return fn(p) })
}

func (s *Postgres) inTx(ctx context.Context, fn func(p *Postgres) error) error {
	if s.db == nil {
		return fn(s)
	}
	return utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&Postgres{q: tx})
	})
}

func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}

func expectRow(res sql.Result, err error) error {
	if err != nil {
		return mapPQError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// likePattern escapes LIKE wildcards and wraps s for a contains match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// ============================================================================
// HOUSEHOLDS
// ============================================================================

const householdColumns = `h.id, h.display_name, h.notes, h.rsvp_token_hash, h.rsvp_last_submitted_at, h.created_at, h.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHousehold(row rowScanner, extra ...any) (*models.Household, error) {
	var h models.Household
	var notes sql.NullString
	var lastSubmitted sql.NullTime

	dest := append([]any{&h.ID, &h.DisplayName, &notes, &h.RSVPTokenHash, &lastSubmitted, &h.CreatedAt, &h.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if notes.Valid {
		h.Notes = &notes.String
	}
	if lastSubmitted.Valid {
		t := lastSubmitted.Time
		h.RSVPLastSubmittedAt = &t
	}
	h.Guests = []models.Guest{}
	return &h, nil
}

func (s *Postgres) CreateHousehold(ctx context.Context, h *models.Household) error {
	return s.inTx(ctx, func(p *Postgres) error {
		_, err := p.q.ExecContext(ctx, `
			INSERT INTO households (id, display_name, notes, rsvp_token_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, h.ID, h.DisplayName, h.Notes, h.RSVPTokenHash, h.CreatedAt, h.UpdatedAt)
		if err != nil {
			return mapPQError(err)
		}

		for i := range h.Guests {
			if err := p.CreateGuest(ctx, &h.Guests[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Postgres) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	return s.getHouseholdWhere(ctx, "h.id = $1", id)
}

func (s *Postgres) GetHouseholdByTokenHash(ctx context.Context, hash string) (*models.Household, error) {
	return s.getHouseholdWhere(ctx, "h.rsvp_token_hash = $1", hash)
}

func (s *Postgres) getHouseholdWhere(ctx context.Context, where string, arg any) (*models.Household, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+householdColumns+` FROM households h WHERE `+where, arg)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	guests, err := s.loadGuests(ctx, []string{h.ID})
	if err != nil {
		return nil, err
	}
	h.Guests = guests[h.ID]
	if h.Guests == nil {
		h.Guests = []models.Guest{}
	}
	return h, nil
}

func (s *Postgres) ListHouseholds(ctx context.Context, q models.HouseholdQuery) ([]models.HouseholdListItem, int, error) {
	var clauses []string
	var args []any

	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		clauses = append(clauses, `(h.display_name ILIKE $1 OR EXISTS (
			SELECT 1 FROM guests g
			WHERE g.household_id = h.id
			  AND (g.first_name ILIKE $1 OR g.last_name ILIKE $1 OR g.email ILIKE $1)
		))`)
	}
	switch q.Status {
	case models.HouseholdStatusResponded:
		clauses = append(clauses, "h.rsvp_last_submitted_at IS NOT NULL")
	case models.HouseholdStatusNotResponded:
		clauses = append(clauses, "h.rsvp_last_submitted_at IS NULL")
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM households h`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, pageSize := NormalizePage(q.Page, q.PageSize, 20)
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`
		SELECT %s,
		       (SELECT COUNT(*) FROM rsvp_submissions s WHERE s.household_id = h.id) AS submission_count
		FROM households h%s
		ORDER BY h.created_at DESC
		LIMIT $%d OFFSET $%d
	`, householdColumns, where, len(args)-1, len(args))

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []models.HouseholdListItem{}
	var ids []string
	for rows.Next() {
		var count int
		h, err := scanHousehold(rows, &count)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, models.HouseholdListItem{Household: *h, SubmissionCount: count})
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		guests, err := s.loadGuests(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range items {
			if g := guests[items[i].ID]; g != nil {
				items[i].Guests = g
			}
		}
	}

	return items, total, nil
}

func (s *Postgres) AllHouseholds(ctx context.Context) ([]models.Household, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+householdColumns+` FROM households h ORDER BY h.display_name, h.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	households := []models.Household{}
	var ids []string
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, err
		}
		households = append(households, *h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return households, nil
	}

	guests, err := s.loadGuests(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range households {
		households[i].Guests = guests[households[i].ID]
	}
	return households, nil
}

func (s *Postgres) UpdateHousehold(ctx context.Context, h *models.Household) error {
	return expectRow(s.q.ExecContext(ctx, `
		UPDATE households
		SET display_name = $1, notes = $2, updated_at = $3
		WHERE id = $4
	`, h.DisplayName, h.Notes, h.UpdatedAt, h.ID))
}

func (s *Postgres) SetHouseholdTokenHash(ctx context.Context, id, hash string) error {
	return expectRow(s.q.ExecContext(ctx, `
		UPDATE households SET rsvp_token_hash = $1, updated_at = NOW() WHERE id = $2
	`, hash, id))
}

// TouchHouseholdSubmitted only ever moves rsvp_last_submitted_at forward, so
// submissions committed out of order cannot regress it.
func (s *Postgres) TouchHouseholdSubmitted(ctx context.Context, id string, at time.Time) error {
	return expectRow(s.q.ExecContext(ctx, `
		UPDATE households
		SET rsvp_last_submitted_at = GREATEST(rsvp_last_submitted_at, $1)
		WHERE id = $2
	`, at, id))
}

func (s *Postgres) DeleteHousehold(ctx context.Context, id string) error {
	return expectRow(s.q.ExecContext(ctx, `DELETE FROM households WHERE id = $1`, id))
}

// ============================================================================
// GUESTS
// ============================================================================

const guestColumns = `id, household_id, first_name, last_name, email, phone, is_primary, attendance_requires_guest_id, created_at`

func scanGuest(row rowScanner) (*models.Guest, error) {
	var g models.Guest
	var email, phone, requires sql.NullString
	if err := row.Scan(&g.ID, &g.HouseholdID, &g.FirstName, &g.LastName, &email, &phone, &g.IsPrimary, &requires, &g.CreatedAt); err != nil {
		return nil, err
	}
	if email.Valid {
		g.Email = &email.String
	}
	if phone.Valid {
		g.Phone = &phone.String
	}
	if requires.Valid {
		g.AttendanceRequiresGuestID = &requires.String
	}
	return &g, nil
}

func (s *Postgres) loadGuests(ctx context.Context, householdIDs []string) (map[string][]models.Guest, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+guestColumns+`
		FROM guests
		WHERE household_id = ANY($1)
		ORDER BY is_primary DESC, created_at ASC
	`, pq.Array(householdIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]models.Guest)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		result[g.HouseholdID] = append(result[g.HouseholdID], *g)
	}
	return result, rows.Err()
}

func (s *Postgres) CreateGuest(ctx context.Context, g *models.Guest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO guests (`+guestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, g.ID, g.HouseholdID, g.FirstName, g.LastName, g.Email, g.Phone, g.IsPrimary, g.AttendanceRequiresGuestID, g.CreatedAt)
	return mapPQError(err)
}

func (s *Postgres) GetGuest(ctx context.Context, id string) (*models.Guest, error) {
	g, err := scanGuest(s.q.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return g, err
}

func (s *Postgres) UpdateGuest(ctx context.Context, g *models.Guest) error {
	return expectRow(s.q.ExecContext(ctx, `
		UPDATE guests
		SET first_name = $1, last_name = $2, email = $3, phone = $4, is_primary = $5, attendance_requires_guest_id = $6
		WHERE id = $7
	`, g.FirstName, g.LastName, g.Email, g.Phone, g.IsPrimary, g.AttendanceRequiresGuestID, g.ID))
}

func (s *Postgres) DeleteGuest(ctx context.Context, id string) error {
	return expectRow(s.q.ExecContext(ctx, `DELETE FROM guests WHERE id = $1`, id))
}

// ============================================================================
// SUBMISSIONS
// ============================================================================

func (s *Postgres) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return s.inTx(ctx, func(p *Postgres) error {
		_, err := p.q.ExecContext(ctx, `
			INSERT INTO rsvp_submissions (id, household_id, submitted_at, actor_type, ip, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sub.ID, sub.HouseholdID, sub.SubmittedAt, string(sub.ActorType), sub.IP, sub.UserAgent)
		if err != nil {
			return mapPQError(err)
		}

		for i, r := range sub.Responses {
			_, err := p.q.ExecContext(ctx, `
				INSERT INTO rsvp_responses (submission_id, guest_id, position, attending, dietary_restrictions)
				VALUES ($1, $2, $3, $4, $5)
			`, sub.ID, r.GuestID, i, r.Attending, r.DietaryRestrictions)
			if err != nil {
				return mapPQError(err)
			}
		}

		if sub.Extras != nil {
			_, err := p.q.ExecContext(ctx, `
				INSERT INTO rsvp_extras (submission_id, song_request_text, song_request_spotify_url)
				VALUES ($1, $2, $3)
			`, sub.ID, sub.Extras.SongRequestText, sub.Extras.SongRequestSpotifyURL)
			if err != nil {
				return mapPQError(err)
			}
		}
		return nil
	})
}

// LatestSubmission returns nil, nil when the household never submitted
func (s *Postgres) LatestSubmission(ctx context.Context, householdID string) (*models.Submission, error) {
	subs, err := s.ListSubmissions(ctx, householdID, 1)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

// ListSubmissions returns newest first. A limit of zero or less means no limit.
func (s *Postgres) ListSubmissions(ctx context.Context, householdID string, limit int) ([]models.Submission, error) {
	var maxRows any // NULL is LIMIT ALL
	if limit > 0 {
		maxRows = limit
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT s.id, s.household_id, s.submitted_at, s.actor_type, s.ip, s.user_agent,
		       e.song_request_text, e.song_request_spotify_url, e.submission_id IS NOT NULL
		FROM rsvp_submissions s
		LEFT JOIN rsvp_extras e ON e.submission_id = s.id
		WHERE s.household_id = $1
		ORDER BY s.submitted_at DESC
		LIMIT $2
	`, householdID, maxRows)
	if err != nil {
		return nil, err
	}

	subs := []models.Submission{}
	for rows.Next() {
		var sub models.Submission
		var actor string
		var ip, ua, songText, songURL sql.NullString
		var hasExtras bool
		if err := rows.Scan(&sub.ID, &sub.HouseholdID, &sub.SubmittedAt, &actor, &ip, &ua, &songText, &songURL, &hasExtras); err != nil {
			rows.Close()
			return nil, err
		}
		sub.ActorType = models.ActorType(actor)
		if ip.Valid {
			sub.IP = &ip.String
		}
		if ua.Valid {
			sub.UserAgent = &ua.String
		}
		if hasExtras {
			sub.Extras = &models.Extras{}
			if songText.Valid {
				sub.Extras.SongRequestText = &songText.String
			}
			if songURL.Valid {
				sub.Extras.SongRequestSpotifyURL = &songURL.String
			}
		}
		subs = append(subs, sub)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range subs {
		responses, err := s.loadResponses(ctx, subs[i].ID)
		if err != nil {
			return nil, err
		}
		subs[i].Responses = responses
	}
	return subs, nil
}

func (s *Postgres) loadResponses(ctx context.Context, submissionID string) ([]models.GuestResponse, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT guest_id, attending, dietary_restrictions
		FROM rsvp_responses
		WHERE submission_id = $1
		ORDER BY position
	`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []models.GuestResponse{}
	for rows.Next() {
		var r models.GuestResponse
		var dietary sql.NullString
		if err := rows.Scan(&r.GuestID, &r.Attending, &dietary); err != nil {
			return nil, err
		}
		if dietary.Valid {
			r.DietaryRestrictions = &dietary.String
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

// ============================================================================
// CHANGE REQUESTS
// ============================================================================

func (s *Postgres) CreateChangeRequest(ctx context.Context, cr *models.ChangeRequest) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO change_requests (id, household_id, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, cr.ID, cr.HouseholdID, cr.Message, cr.Status, cr.CreatedAt)
	return mapPQError(err)
}

func (s *Postgres) ListChangeRequests(ctx context.Context, householdID string) ([]models.ChangeRequest, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, household_id, message, status, created_at
		FROM change_requests
		WHERE household_id = $1
		ORDER BY created_at DESC
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.ChangeRequest{}
	for rows.Next() {
		var cr models.ChangeRequest
		if err := rows.Scan(&cr.ID, &cr.HouseholdID, &cr.Message, &cr.Status, &cr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cr)
	}
	return result, rows.Err()
}

func (s *Postgres) UpdateChangeRequestStatus(ctx context.Context, id, status string) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	err := s.q.QueryRowContext(ctx, `
		UPDATE change_requests SET status = $1 WHERE id = $2
		RETURNING id, household_id, message, status, created_at
	`, status, id).Scan(&cr.ID, &cr.HouseholdID, &cr.Message, &cr.Status, &cr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

// ============================================================================
// AUDIT LOG
// ============================================================================

func (s *Postgres) CreateAuditLog(ctx context.Context, e *models.AuditLog) error {
	var metadata any // NULL unless there is metadata
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = string(raw)
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO audit_logs (id, created_at, actor_type, actor_admin_id, household_id, action, entity_type, entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.CreatedAt, string(e.ActorType), e.ActorAdminID, e.HouseholdID, e.Action, e.EntityType, e.EntityID, metadata)
	return mapPQError(err)
}

// buildAuditFilter turns an audit query into a WHERE clause over audit_logs l
// with positional args
func buildAuditFilter(q models.AuditQuery) (string, []any) {
	var clauses []string
	var args []any
	add := func(format string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if q.Action != "" {
		add("l.action = $%d", q.Action)
	}
	if q.ActorType != "" && q.ActorType != "all" {
		add("l.actor_type = $%d", q.ActorType)
	}
	if q.HouseholdID != "" {
		add("l.household_id = $%d", q.HouseholdID)
	}
	if q.DateFrom != nil {
		add("l.created_at >= $%d", *q.DateFrom)
	}
	if q.DateTo != nil {
		add("l.created_at <= $%d", *q.DateTo)
	}
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(l.action ILIKE $%d OR l.entity_type ILIKE $%d OR l.entity_id ILIKE $%d)", n, n, n))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Postgres) QueryAuditLogs(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, int, error) {
	where, args := buildAuditFilter(q)

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs l`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, pageSize := NormalizePage(q.Page, q.PageSize, 50)
	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.q.QueryContext(ctx, fmt.Sprintf(`
		SELECT l.id, l.created_at, l.actor_type, l.actor_admin_id, l.household_id,
		       l.action, l.entity_type, l.entity_id, l.metadata,
		       a.name, a.email, h.display_name
		FROM audit_logs l
		LEFT JOIN admin_users a ON a.id = l.actor_admin_id
		LEFT JOIN households h ON h.id = l.household_id%s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []models.AuditLog{}
	for rows.Next() {
		var e models.AuditLog
		var actor string
		var adminID, householdID, adminName, adminEmail, displayName sql.NullString
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.CreatedAt, &actor, &adminID, &householdID, &e.Action, &e.EntityType, &e.EntityID, &metadata,
			&adminName, &adminEmail, &displayName); err != nil {
			return nil, 0, err
		}
		e.ActorType = models.ActorType(actor)
		if adminID.Valid {
			e.ActorAdminID = &adminID.String
			if adminEmail.Valid {
				e.ActorAdmin = &models.AuditAdminSummary{ID: adminID.String, Name: adminName.String, Email: adminEmail.String}
			}
		}
		if householdID.Valid {
			e.HouseholdID = &householdID.String
			if displayName.Valid {
				e.Household = &models.AuditHouseholdSummary{ID: householdID.String, DisplayName: displayName.String}
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, 0, fmt.Errorf("failed to decode audit metadata %s: %w", e.ID, err)
			}
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// ============================================================================
// ADMIN USERS
// ============================================================================

const adminColumns = `id, email, name, role, password_hash, COALESCE(totp_secret, ''), totp_enabled, created_at, last_login_at`

func scanAdmin(row rowScanner) (*models.AdminUser, error) {
	var a models.AdminUser
	var lastLogin sql.NullTime
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return &a, nil
}

func (s *Postgres) CreateAdmin(ctx context.Context, a *models.AdminUser) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO admin_users (id, email, name, role, password_hash, totp_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Email, a.Name, a.Role, a.PasswordHash, a.TOTPEnabled, a.CreatedAt)
	return mapPQError(err)
}

func (s *Postgres) GetAdmin(ctx context.Context, id string) (*models.AdminUser, error) {
	a, err := scanAdmin(s.q.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Postgres) GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	a, err := scanAdmin(s.q.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE LOWER(email) = LOWER($1)`, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Postgres) UpdateAdminLogin(ctx context.Context, id string, at time.Time) error {
	return expectRow(s.q.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $1 WHERE id = $2`, at, id))
}

func (s *Postgres) SetAdminTOTP(ctx context.Context, id, secret string, enabled bool) error {
	return expectRow(s.q.ExecContext(ctx, `
		UPDATE admin_users SET totp_secret = NULLIF($1, ''), totp_enabled = $2 WHERE id = $3
	`, secret, enabled, id))
}

func (s *Postgres) SetAdminPassword(ctx context.Context, id, passwordHash string) error {
	return expectRow(s.q.ExecContext(ctx, `
		UPDATE admin_users SET password_hash = $1 WHERE id = $2
	`, passwordHash, id))
}
