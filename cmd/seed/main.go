package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logging"
)

const batchSize = 500

func main() {
	practitioners := flag.Int("practitioners", 20, "number of practitioners to create")
	patients := flag.Int("patients", 1000, "number of patients to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap().Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Env, cfg.LogLevel)
	logger.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, MinConns: cfg.PGMinConns})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	hours, err := appointment.NewClinicHours(cfg.OpeningTime, cfg.ClosingTime, cfg.BookingInterval)
	if err != nil {
		logger.Fatal().Err(err).Msg("clinic hours")
	}

	bg := context.Background()
	if err := seedClinic(bg, pool, hours, cfg.ClinicTimezone, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed clinic")
	}
	if err := seedPractitioners(bg, pool, *practitioners, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed practitioners")
	}
	if err := seedPatients(bg, pool, *patients, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}

	logger.Info().Msg("seed complete")
}

// fakeContact returns a phone number and email that pass the contact checks.
func fakeContact() (phone, email string) {
	return gofakeit.Numerify("###-###-####"), gofakeit.Email()
}

func fakeClinic(hours appointment.ClinicHours, loc *time.Location) (*appointment.Clinic, error) {
	phone, email := fakeContact()
	return appointment.NewClinic(gofakeit.Company()+" Clinic", phone, email, hours, loc)
}

func fakePractitioner() (*appointment.Practitioner, error) {
	phone, email := fakeContact()
	return appointment.NewPractitioner(gofakeit.FirstName(), gofakeit.LastName(), phone, email)
}

func fakePatient() (*appointment.Patient, error) {
	phone, email := fakeContact()
	return appointment.NewPatient(gofakeit.FirstName(), gofakeit.LastName(), phone, email)
}

func seedClinic(ctx context.Context, pool *pgxpool.Pool, hours appointment.ClinicHours, loc *time.Location, logger zerolog.Logger) error {
	clinic, err := fakeClinic(hours, loc)
	if err != nil {
		return err
	}
	if err := appointment.NewPgRepository(pool).InsertClinic(ctx, clinic); err != nil {
		return err
	}
	logger.Info().
		Str("clinic_id", clinic.ID().String()).
		Str("name", clinic.Name()).
		Msg("clinic seeded")
	return nil
}

func seedPractitioners(ctx context.Context, pool *pgxpool.Pool, count int, logger zerolog.Logger) error {
	logger.Info().Int("count", count).Msg("seeding practitioners")

	return inBatches(ctx, pool, count, func(repo *appointment.PgRepository) error {
		p, err := fakePractitioner()
		if err != nil {
			return err
		}
		return repo.InsertPractitioner(ctx, p)
	}, func(done int) {
		logger.Info().Msgf("practitioners seeded: %d/%d", done, count)
	})
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int, logger zerolog.Logger) error {
	logger.Info().Int("count", count).Msg("seeding patients")

	return inBatches(ctx, pool, count, func(repo *appointment.PgRepository) error {
		p, err := fakePatient()
		if err != nil {
			return err
		}
		return repo.InsertPatient(ctx, p)
	}, func(done int) {
		logger.Info().Msgf("patients seeded: %d/%d", done, count)
	})
}

// inBatches runs insert count times, committing every batchSize rows.
func inBatches(ctx context.Context, pool *pgxpool.Pool, count int, insert func(*appointment.PgRepository) error, progress func(done int)) error {
	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			repo := appointment.NewPgRepository(tx)
			for i := offset; i < end; i++ {
				if err := insert(repo); err != nil {
					return fmt.Errorf("row %d: %w", i, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		progress(end)
	}
	return nil
}
