package service

import (
	"math"

	"github.com/halomart/halomart/internal/models"
	"github.com/halomart/halomart/internal/repository"

	"gorm.io/gorm"
)

// ReviewService 评价业务服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// CreateReviewInput 创建评价输入
type CreateReviewInput struct {
	UserID    uint
	ProductID uint
	Rating    int
	Comment   string
}

// UpdateReviewInput 更新评价输入
type UpdateReviewInput struct {
	Rating  int
	Comment string
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// roundRating 平均分保留 2 位小数
func roundRating(value float64) float64 {
	return math.Round(value*100) / 100
}

// recalcProductRating 重算商品的已审核评分统计，需在事务内调用
func (s *ReviewService) recalcProductRating(tx *gorm.DB, productID uint) error {
	row, err := s.reviewRepo.WithTx(tx).AggregateApproved(productID)
	if err != nil {
		return err
	}
	average := 0.0
	if row.Count > 0 {
		average = roundRating(row.Average)
	}
	return s.productRepo.WithTx(tx).UpdateRatingStats(productID, average, int(row.Count))
}

// Create 创建评价：要求购买过该商品且未评价过，新评价默认待审核
func (s *ReviewService) Create(input CreateReviewInput) (*models.Review, error) {
	if !validRating(input.Rating) {
		return nil, ErrReviewRatingInvalid
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	purchases, err := s.orderRepo.CountUserPurchases(input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if purchases == 0 {
		return nil, ErrReviewNotPurchased
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	review := models.Review{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Approved:  false,
	}
	if err := s.reviewRepo.Create(&review); err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateOwn 更新本人评价，修改后重置为待审核
func (s *ReviewService) UpdateOwn(userID, reviewID uint, input UpdateReviewInput) (*models.Review, error) {
	if !validRating(input.Rating) {
		return nil, ErrReviewRatingInvalid
	}

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil || review.UserID != userID {
		return nil, ErrNotFound
	}

	wasApproved := review.Approved
	review.Rating = input.Rating
	review.Comment = input.Comment
	review.Approved = false

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Update(review); err != nil {
			return err
		}
		if wasApproved {
			return s.recalcProductRating(tx, review.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteOwn 删除本人评价
func (s *ReviewService) DeleteOwn(userID, reviewID uint) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil || review.UserID != userID {
		return ErrNotFound
	}
	return s.deleteTx(review)
}

// AdminDelete 管理端删除评价
func (s *ReviewService) AdminDelete(reviewID uint) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	return s.deleteTx(review)
}

func (s *ReviewService) deleteTx(review *models.Review) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Delete(review.ID); err != nil {
			return err
		}
		if review.Approved {
			return s.recalcProductRating(tx, review.ProductID)
		}
		return nil
	})
}

// AdminSetApproved 管理端审核评价，审核状态变化后重算商品评分
func (s *ReviewService) AdminSetApproved(reviewID uint, approved bool) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.Approved == approved {
		return review, nil
	}

	review.Approved = approved
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.WithTx(tx).Update(review); err != nil {
			return err
		}
		return s.recalcProductRating(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListForProduct 商品已审核评价列表
func (s *ReviewService) ListForProduct(productID uint, page, pageSize int) ([]models.Review, int64, error) {
	approved := true
	return s.reviewRepo.ListByProduct(repository.ReviewListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: productID,
		Approved:  &approved,
	})
}

// AdminList 管理端评价列表
func (s *ReviewService) AdminList(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.ListAdmin(filter)
}
