package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/BhavyaPagadala/urbix/internal/jsonfile"
)

// FileRepository stores the collection as a JSON text file.
type FileRepository struct {
	file *jsonfile.Collection[[]Report]
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{file: jsonfile.New[[]Report](path)}
}

func (r *FileRepository) LoadReports(ctx context.Context) ([]Report, error) {
	reports, err := r.file.Load()
	switch {
	case errors.Is(err, jsonfile.ErrMissing):
		return nil, ErrNoState
	case errors.Is(err, jsonfile.ErrMalformed):
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	case err != nil:
		return nil, err
	}

	for i := range reports {
		if err := repair(&reports[i]); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func (r *FileRepository) SaveReports(ctx context.Context, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	return r.file.Save(reports)
}
