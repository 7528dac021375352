package service

import (
	"strings"

	"github.com/linkmall/internal/models"
	"github.com/linkmall/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Slug      string
	Name      string
	SortOrder int
}

func (input *CreateCategoryInput) normalize() {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
}

// ensureSlugFree slug 全局唯一，编辑时排除自身
func (s *CategoryService) ensureSlugFree(slug string, excludeID *string) error {
	count, err := s.repo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugExists
	}
	return nil
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	return s.repo.List()
}

// Create 创建分类
func (s *CategoryService) Create(input CreateCategoryInput) (*models.Category, error) {
	input.normalize()
	if err := s.ensureSlugFree(input.Slug, nil); err != nil {
		return nil, err
	}

	category := models.Category{
		Slug:      input.Slug,
		Name:      input.Name,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id string, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	input.normalize()
	if err := s.ensureSlugFree(input.Slug, &id); err != nil {
		return nil, err
	}

	category.Slug = input.Slug
	category.Name = input.Name
	category.SortOrder = input.SortOrder
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，仍挂有商品时拒绝
func (s *CategoryService) Delete(id string) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}

	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(id)
}
