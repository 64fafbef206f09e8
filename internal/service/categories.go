package service

import (
	"context"
	"errors"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

// Categories manages project categories.
type Categories struct {
	s *Service
}

func checkCategoryName(ctx context.Context, tx store.Tx, c *model.Category) error {
	other, err := tx.GetCategoryByName(ctx, c.Name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != c.ID:
		return conflict("name", "category %q already exists", c.Name)
	}
	return nil
}

// Create adds a category.
func (c *Categories) Create(ctx context.Context, in model.CreateCategoryInput) (*model.Category, error) {
	name, err := requireText("name", in.Name)
	if err != nil {
		return nil, err
	}
	cat := &model.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
	}
	err = c.s.tx(ctx, func(tx store.Tx) error {
		if err := checkCategoryName(ctx, tx, cat); err != nil {
			return err
		}
		return storeErr(tx.CreateCategory(ctx, cat), "category")
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Get returns a single category.
func (c *Categories) Get(ctx context.Context, rawID string) (*model.Category, error) {
	id, err := parseID(rawID, "category")
	if err != nil {
		return nil, err
	}
	var cat *model.Category
	err = c.s.tx(ctx, func(tx store.Tx) error {
		var err error
		cat, err = tx.GetCategory(ctx, id)
		return storeErr(err, "category")
	})
	return cat, err
}

// List returns every category.
func (c *Categories) List(ctx context.Context) ([]*model.Category, error) {
	var cats []*model.Category
	err := c.s.tx(ctx, func(tx store.Tx) error {
		var err error
		cats, err = tx.ListCategories(ctx)
		return err
	})
	return cats, err
}

// Update applies a partial update.
func (c *Categories) Update(ctx context.Context, rawID string, in model.UpdateCategoryInput) (*model.Category, error) {
	id, err := parseID(rawID, "category")
	if err != nil {
		return nil, err
	}
	if err := requireSet("name", in.Name); err != nil {
		return nil, err
	}
	var cat *model.Category
	err = c.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if cat, err = tx.GetCategory(ctx, id); err != nil {
			return storeErr(err, "category")
		}
		if in.Name.Set {
			if cat.Name, err = requireText("name", *in.Name.Value); err != nil {
				return err
			}
			if err := checkCategoryName(ctx, tx, cat); err != nil {
				return err
			}
		}
		cat.Description = in.Description.Apply(cat.Description)
		cat.Color = in.Color.Apply(cat.Color)
		return storeErr(tx.UpdateCategory(ctx, cat), "category")
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete removes a category. Its projects keep existing without a category.
func (c *Categories) Delete(ctx context.Context, rawID string) (*model.Category, error) {
	id, err := parseID(rawID, "category")
	if err != nil {
		return nil, err
	}
	var cat *model.Category
	err = c.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if cat, err = tx.GetCategory(ctx, id); err != nil {
			return storeErr(err, "category")
		}
		return storeErr(tx.DeleteCategory(ctx, id), "category")
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}
