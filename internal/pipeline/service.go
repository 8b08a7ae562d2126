package pipeline

import (
	"time"

	"github.com/google/uuid"

	"shelfsort/internal"
	"shelfsort/internal/config"
	apperrors "shelfsort/internal/errors"
	"shelfsort/internal/logger"
	"shelfsort/internal/storage"
)

// Service runs the CLI commands: read, normalize, group, write. The DB is
// optional and only used as a sink and run ledger.
type Service struct {
	cfg config.Config
	log *logger.Logger
	db  *storage.DB
}

func NewService(cfg config.Config, log *logger.Logger, db *storage.DB) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{cfg: cfg, log: log, db: db}
}

func (s *Service) policy() Policy {
	p := DefaultPolicy()
	p.Strict = s.cfg.Strict
	return p
}

func (s *Service) normalizer() (*Normalizer, error) {
	ids, err := NewIDSource(s.cfg.IDStrategy, s.cfg.IDPrefix, s.cfg.IDStart)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(ids, s.policy(), s.log), nil
}

type CleanResult struct {
	Books []internal.Book
	Stats CleanStats
}

// Clean reads raw records from input and writes the normalized array to
// output. Nothing is written when reading fails.
func (s *Service) Clean(input string, format internal.SourceFormat, output string) (CleanResult, error) {
	start := time.Now()
	res, err := s.clean(input, format, output)
	if err != nil {
		return CleanResult{}, err
	}
	s.recordRun("clean", input, start, internal.RunCounts{Records: res.Stats.Records, Generated: res.Stats.Generated, Flagged: res.Stats.Flagged})
	return res, nil
}

func (s *Service) clean(input string, format internal.SourceFormat, output string) (CleanResult, error) {
	start := time.Now()
	records, err := ReadRecords(input, format)
	if err != nil {
		return CleanResult{}, err
	}
	n, err := s.normalizer()
	if err != nil {
		return CleanResult{}, err
	}

	books, stats := n.CleanAll(records)
	if err := WriteJSON(output, books); err != nil {
		return CleanResult{}, err
	}

	s.log.Info("cleaning completed",
		"input", input,
		"output", output,
		"records", stats.Records,
		"generatedIds", stats.Generated,
		"flagged", stats.Flagged,
		"elapsed", time.Since(start))
	return CleanResult{Books: books, Stats: stats}, nil
}

// Group groups books and writes the ordered report to output.
func (s *Service) Group(books []internal.Book, output string) (Report, error) {
	report := GroupAndEmit(books)
	if err := WriteJSON(output, report); err != nil {
		return nil, err
	}
	s.logReport(report, output)
	return report, nil
}

func (s *Service) GroupFile(input, output string) (Report, error) {
	start := time.Now()
	books, err := ReadBooks(input)
	if err != nil {
		return nil, err
	}
	report, err := s.Group(books, output)
	if err != nil {
		return nil, err
	}
	s.recordRun("group", input, start, reportCounts(report))
	return report, nil
}

// GroupFromDB groups whatever the SQLite sink currently holds.
func (s *Service) GroupFromDB(output string) (Report, error) {
	if s.db == nil {
		return nil, apperrors.InvalidConfig(apperrors.New("no database configured"))
	}
	start := time.Now()
	books, err := s.db.ListBooks()
	if err != nil {
		return nil, apperrors.Internal("list books", err)
	}
	report, err := s.Group(books, output)
	if err != nil {
		return nil, err
	}
	s.recordRun("group", s.cfg.DBPath, start, reportCounts(report))
	return report, nil
}

type RunResult struct {
	Clean  CleanResult
	Report Report
}

// Run is clean followed by group in one pass. With a DB attached the
// cleaned books are loaded into it as well.
func (s *Service) Run(input string, format internal.SourceFormat, cleanedOut, groupedOut string) (RunResult, error) {
	start := time.Now()
	cleaned, err := s.clean(input, format, cleanedOut)
	if err != nil {
		return RunResult{}, err
	}
	report, err := s.Group(cleaned.Books, groupedOut)
	if err != nil {
		return RunResult{}, err
	}
	if s.db != nil {
		if err := s.load(cleaned.Books); err != nil {
			return RunResult{}, err
		}
	}

	counts := reportCounts(report)
	counts.Generated = cleaned.Stats.Generated
	counts.Flagged = cleaned.Stats.Flagged
	s.recordRun("run", input, start, counts)
	return RunResult{Clean: cleaned, Report: report}, nil
}

// ExportXLSX groups a books file and writes it as a workbook.
func (s *Service) ExportXLSX(input, output string) (Report, error) {
	books, err := ReadBooks(input)
	if err != nil {
		return nil, err
	}
	report := GroupAndEmit(books)
	if err := ExportReportToXLSX(report, output); err != nil {
		return nil, err
	}
	st := report.Stats()
	s.log.Info("exported workbook", "output", output, "locations", st.Locations, "books", st.Books)
	return report, nil
}

// LoadFile replaces the SQLite sink contents with a books file.
func (s *Service) LoadFile(input string) (int, error) {
	if s.db == nil {
		return 0, apperrors.InvalidConfig(apperrors.New("no database configured"))
	}
	start := time.Now()
	books, err := ReadBooks(input)
	if err != nil {
		return 0, err
	}
	if err := s.load(books); err != nil {
		return 0, err
	}
	s.recordRun("db:load", input, start, internal.RunCounts{Records: len(books)})
	return len(books), nil
}

func (s *Service) load(books []internal.Book) error {
	if err := s.db.ReplaceBooks(books, LocationKey); err != nil {
		return apperrors.Internal("load books", err)
	}
	s.log.Info("loaded books into database", "books", len(books), "db", s.cfg.DBPath)
	return nil
}

func (s *Service) logReport(report Report, output string) {
	st := report.Stats()
	for _, g := range report {
		s.log.Debug("location", "key", g.Key, "books", len(g.Books))
	}
	s.log.Info("grouping completed",
		"output", output,
		"locations", st.Locations,
		"books", st.Books,
		"unknownLocation", st.Unknown)
}

func (s *Service) recordRun(command, source string, start time.Time, counts internal.RunCounts) {
	if s.db == nil {
		return
	}
	timings := map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}
	if err := s.db.InsertRun(uuid.NewString(), command, source, timings, counts); err != nil {
		s.log.Warn("failed to record run", "command", command, "error", err)
	}
}

func reportCounts(report Report) internal.RunCounts {
	st := report.Stats()
	return internal.RunCounts{Records: st.Books, Locations: st.Locations, Unknown: st.Unknown}
}
