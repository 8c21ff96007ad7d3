package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/expo-leads/internal/entity"
	"github.com/xavierca1/expo-leads/internal/infra/crypto"
)

const leadColumns = `id, name, email, phone, exhibition_id,
	company_name, designation, city_state, company_type, company_type_other,
	industry, industry_other, company_size, interest_areas, solutions,
	solutions_other, timeline, budget, follow_up_mode, best_time_to_contact,
	additional_notes, consent, created_at`

// LeadRepository stores leads. When Cipher is set, name, email and phone are
// encrypted and email_lookup holds a keyed digest instead of the address.
type LeadRepository struct {
	DB     *sql.DB
	Cipher *crypto.FieldCipher
}

func NewLeadRepository(db *sql.DB, cipher *crypto.FieldCipher) *LeadRepository {
	return &LeadRepository{DB: db, Cipher: cipher}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	name, email, phone := lead.Name, lead.Email, lead.Phone
	if err := r.seal(&name, &email, &phone); err != nil {
		return err
	}

	query := `
		INSERT INTO leads (
			name, email, email_lookup, phone, exhibition_id,
			company_name, designation, city_state, company_type, company_type_other,
			industry, industry_other, company_size, interest_areas, solutions,
			solutions_other, timeline, budget, follow_up_mode, best_time_to_contact,
			additional_notes, consent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id
	`

	p := lead.Profile
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		name,
		email,
		r.lookup(lead.Email),
		phone,
		lead.ExhibitionID,
		nullString(p.CompanyName),
		nullString(p.Designation),
		nullString(p.CityState),
		pq.StringArray(p.CompanyType),
		nullString(p.CompanyTypeOther),
		pq.StringArray(p.Industry),
		nullString(p.IndustryOther),
		pq.StringArray(p.CompanySize),
		pq.StringArray(p.InterestAreas),
		pq.StringArray(p.Solutions),
		nullString(p.SolutionsOther),
		pq.StringArray(p.Timeline),
		pq.StringArray(p.Budget),
		pq.StringArray(p.FollowUpMode),
		pq.StringArray(p.BestTimeToContact),
		nullString(p.AdditionalNotes),
		p.Consent,
		lead.CreatedAt,
	).Scan(&lead.ID)

	if isUniqueViolation(err) {
		return entity.ErrDuplicateRegistration
	}
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	leads, err := r.scanLeads(rows)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, entity.ErrLeadNotFound
	}
	return leads[0], nil
}

func (r *LeadRepository) FindByExhibitionID(ctx context.Context, exhibitionID int64) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE exhibition_id = $1 ORDER BY created_at, id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, exhibitionID)
	if err != nil {
		return nil, err
	}
	return r.scanLeads(rows)
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at, id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.scanLeads(rows)
}

func (r *LeadRepository) ExistsByEmailAndExhibitionID(ctx context.Context, email string, exhibitionID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM leads WHERE exhibition_id = $1 AND email_lookup = $2)`

	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, exhibitionID, r.lookup(email)).Scan(&exists)
	return exists, err
}

// lookup is the value behind the (exhibition_id, email_lookup) unique index.
// The email is keyed exactly as submitted.
func (r *LeadRepository) lookup(email string) string {
	if r.Cipher != nil {
		return r.Cipher.Lookup(email)
	}
	return email
}

func (r *LeadRepository) seal(fields ...*string) error {
	if r.Cipher == nil {
		return nil
	}
	for _, f := range fields {
		enc, err := r.Cipher.Encrypt(*f)
		if err != nil {
			return fmt.Errorf("encrypt lead field: %w", err)
		}
		*f = enc
	}
	return nil
}

func (r *LeadRepository) open(fields ...*string) error {
	if r.Cipher == nil {
		return nil
	}
	for _, f := range fields {
		plain, err := r.Cipher.Decrypt(*f)
		if err != nil {
			return fmt.Errorf("decrypt lead field: %w", err)
		}
		*f = plain
	}
	return nil
}

func (r *LeadRepository) scanLeads(rows *sql.Rows) ([]*entity.Lead, error) {
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var (
			l                                                 entity.Lead
			companyName, designation, cityState               sql.NullString
			companyTypeOther, industryOther, solutionsOther   sql.NullString
			additionalNotes                                   sql.NullString
			companyType, industry, companySize, interestAreas pq.StringArray
			solutions, timeline, budget, followUp, bestTime   pq.StringArray
			consent                                           sql.NullBool
		)

		err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.Phone, &l.ExhibitionID,
			&companyName, &designation, &cityState, &companyType, &companyTypeOther,
			&industry, &industryOther, &companySize, &interestAreas, &solutions,
			&solutionsOther, &timeline, &budget, &followUp, &bestTime,
			&additionalNotes, &consent, &l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := r.open(&l.Name, &l.Email, &l.Phone); err != nil {
			return nil, err
		}

		l.Profile = entity.Profile{
			CompanyName:       companyName.String,
			Designation:       designation.String,
			CityState:         cityState.String,
			CompanyType:       companyType,
			CompanyTypeOther:  companyTypeOther.String,
			Industry:          industry,
			IndustryOther:     industryOther.String,
			CompanySize:       companySize,
			InterestAreas:     interestAreas,
			Solutions:         solutions,
			SolutionsOther:    solutionsOther.String,
			Timeline:          timeline,
			Budget:            budget,
			FollowUpMode:      followUp,
			BestTimeToContact: bestTime,
			AdditionalNotes:   additionalNotes.String,
		}
		if consent.Valid {
			v := consent.Bool
			l.Profile.Consent = &v
		}

		leads = append(leads, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}
