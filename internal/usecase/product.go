package usecase

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
)

// ProductUsecase manages the catalog on behalf of the seller panel.
type ProductUsecase interface {
	Add(ctx context.Context, product *model.Product, images []ImageUpload) (*model.Product, error)
	Update(ctx context.Context, id string, params repository.UpdateProductParams, images []ImageUpload) error
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	SetStock(ctx context.Context, id string, inStock bool) error
	Delete(ctx context.Context, id string) error
}

// ImageUpload is one multipart image from the seller panel.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore persists uploaded product images and returns public URLs.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// ErrProductNotFound means the catalog has no such product.
var ErrProductNotFound = errors.New("product not found")

type productUsecase struct {
	productRepo repository.ProductRepository
	images      ImageStore
}

// NewProductUsecase creates a new instance of ProductUsecase.
func NewProductUsecase(productRepo repository.ProductRepository, images ImageStore) ProductUsecase {
	return &productUsecase{
		productRepo: productRepo,
		images:      images,
	}
}

func (u *productUsecase) Add(ctx context.Context, product *model.Product, images []ImageUpload) (*model.Product, error) {
	urls, err := u.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}
	product.Images = urls

	return u.productRepo.Create(ctx, product)
}

func (u *productUsecase) Update(
	ctx context.Context,
	id string,
	params repository.UpdateProductParams,
	images []ImageUpload,
) error {
	if len(images) > 0 {
		urls, err := u.uploadImages(ctx, images)
		if err != nil {
			return err
		}
		params.Images = &urls
	}

	if _, err := u.productRepo.Update(ctx, id, params); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (u *productUsecase) Get(ctx context.Context, id string) (*model.Product, error) {
	product, err := u.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (u *productUsecase) List(ctx context.Context) ([]*model.Product, error) {
	return u.productRepo.List(ctx)
}

func (u *productUsecase) SetStock(ctx context.Context, id string, inStock bool) error {
	return u.productRepo.SetStock(ctx, id, inStock)
}

func (u *productUsecase) Delete(ctx context.Context, id string) error {
	if err := u.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (u *productUsecase) uploadImages(ctx context.Context, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := u.images.Upload(ctx, img.Filename, img.ContentType, img.Body)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
