package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/platform/logging"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// ErrNoValidEntries is returned when an export holds nothing to import. The store is
// left untouched in that case.
var ErrNoValidEntries = errors.New("no valid entries to import")

// Report summarizes one import.
type Report struct {
	Read     int
	Inserted int
	Rejected []Rejection
}

type Service struct {
	repo  memberrepo.Repository
	newID func() domain.MemberID
}

func NewService(repo memberrepo.Repository) *Service {
	return &Service{
		repo: repo,
		newID: func() domain.MemberID {
			return domain.MemberID(uuid.NewString())
		},
	}
}

// Import replaces every stored member with the valid entries read from r.
func (s *Service) Import(ctx context.Context, r io.Reader) (Report, error) {
	res, err := Parse(r, s.newID)
	if err != nil {
		return Report{}, err
	}
	rep := Report{
		Read:     len(res.Members) + len(res.Rejected),
		Rejected: res.Rejected,
	}
	for _, rej := range res.Rejected {
		logging.Ctx(ctx).Warn().Int("index", rej.Index).Str("reason", rej.Reason).Msg("skipping entry")
	}
	if len(res.Members) == 0 {
		return rep, ErrNoValidEntries
	}

	n, err := s.repo.ReplaceAll(ctx, res.Members)
	if err != nil {
		return rep, fmt.Errorf("replace members: %w", err)
	}
	rep.Inserted = n
	return rep, nil
}

// ImportFile is Import over the file at path.
func (s *Service) ImportFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return s.Import(ctx, f)
}
