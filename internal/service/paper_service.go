package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
	"github.com/talenthub/abacus-api/internal/model"
	"github.com/talenthub/abacus-api/internal/presets"
	"github.com/talenthub/abacus-api/internal/repository"
	"gorm.io/gorm"
)

// PaperService compiles preview papers and manages saved paper configs.
type PaperService interface {
	Preview(req dto.PaperConfigDTO) (*dto.PreviewResponseDTO, error)
	PresetBlocks(level string) ([]generator.BlockConfig, error)
	CreatePaper(req dto.PaperConfigDTO) (*dto.PaperResponseDTO, error)
	GetPaper(id uint) (*dto.PaperResponseDTO, error)
	ListPapers() ([]dto.PaperResponseDTO, error)
}

type paperService struct {
	paperRepo repository.PaperRepository
}

func NewPaperService(paperRepo repository.PaperRepository) PaperService {
	return &paperService{paperRepo: paperRepo}
}

// resolveBlocks fills in preset blocks for a graded level when the request
// supplies none, and refreshes auto-derived titles either way.
func resolveBlocks(req *dto.PaperConfigDTO) error {
	if len(req.Blocks) == 0 && req.Level != "Custom" {
		blocks, ok := presets.BlocksForLevel(req.Level)
		if !ok {
			return fmt.Errorf("unknown level %q", req.Level)
		}
		req.Blocks = blocks
	}
	generator.NormalizeTitles(req.Blocks)
	if name := presets.LevelDisplayName(req.Level); name != "" {
		req.Title = fmt.Sprintf("%s - %s", req.Title, name)
	}
	return nil
}

// Preview validates the block configs, then compiles the whole paper under a
// fresh process-random seed. The seed comes back with the blocks so the same
// paper can be re-derived later.
func (s *paperService) Preview(req dto.PaperConfigDTO) (*dto.PreviewResponseDTO, error) {
	if err := resolveBlocks(&req); err != nil {
		log.Warn().Err(err).Str("level", req.Level).Msg("Preview: could not resolve blocks")
		return nil, err
	}
	if err := generator.Validate(req.Blocks); err != nil {
		return nil, err
	}

	compiled, err := generator.CompileNew(req.Blocks)
	if err != nil {
		log.Error().Err(err).Msg("Preview: compile failed after validation")
		return nil, err
	}
	return &dto.PreviewResponseDTO{Blocks: compiled.Blocks, Seed: compiled.Seed}, nil
}

func (s *paperService) PresetBlocks(level string) ([]generator.BlockConfig, error) {
	blocks, ok := presets.BlocksForLevel(level)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", level)
	}
	return blocks, nil
}

func (s *paperService) CreatePaper(req dto.PaperConfigDTO) (*dto.PaperResponseDTO, error) {
	if err := resolveBlocks(&req); err != nil {
		return nil, err
	}
	if err := generator.Validate(req.Blocks); err != nil {
		return nil, err
	}

	paper := model.Paper{
		Title: req.Title,
		Level: req.Level,
		Config: model.PaperConfigJSON(generator.PaperConfig{
			Title:       req.Title,
			Level:       req.Level,
			Blocks:      req.Blocks,
			Orientation: req.Orientation,
		}),
	}
	if err := s.paperRepo.Create(&paper); err != nil {
		log.Error().Err(err).Msg("CreatePaper: failed to persist paper")
		return nil, err
	}

	return paperToDTO(&paper)
}

func (s *paperService) GetPaper(id uint) (*dto.PaperResponseDTO, error) {
	paper, err := s.paperRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Uint("paperID", id).Msg("GetPaper: lookup failed")
		return nil, err
	}
	return paperToDTO(paper)
}

func (s *paperService) ListPapers() ([]dto.PaperResponseDTO, error) {
	papers, err := s.paperRepo.FindAll()
	if err != nil {
		log.Error().Err(err).Msg("ListPapers: lookup failed")
		return nil, err
	}
	dtos := make([]dto.PaperResponseDTO, 0, len(papers))
	for i := range papers {
		d, err := paperToDTO(&papers[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *d)
	}
	return dtos, nil
}

func paperToDTO(paper *model.Paper) (*dto.PaperResponseDTO, error) {
	var resp dto.PaperResponseDTO
	if err := copier.Copy(&resp, paper); err != nil {
		log.Error().Err(err).Msg("Error copying paper to DTO")
		return nil, fmt.Errorf("error preparing response: %w", err)
	}
	resp.Config = generator.PaperConfig(paper.Config)
	return &resp, nil
}
