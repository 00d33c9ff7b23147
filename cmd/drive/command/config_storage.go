package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/storage"
	"github.com/pixil98/go-errors"
)

type StorageConfig struct {
	Collectibles AssetConfig[*game.Collectible] `json:"collectibles"`
	ParkingZones AssetConfig[*game.ParkingZone] `json:"parking_zones"`
	Courses      AssetConfig[*game.Course]      `json:"courses"`
}

func (c *StorageConfig) BuildDictionary() (*game.Dictionary, error) {
	collectibles, err := c.Collectibles.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating collectible store: %w", err)
	}
	zones, err := c.ParkingZones.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating parking zone store: %w", err)
	}
	courses, err := c.Courses.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating course store: %w", err)
	}

	return &game.Dictionary{
		Collectibles: collectibles,
		ParkingZones: zones,
		Courses:      courses,
	}, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Collectibles.Validate("collectibles"))
	el.Add(c.ParkingZones.Validate("parking_zones"))
	el.Add(c.Courses.Validate("courses"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	info, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: path %q is not a directory", name, c.Path)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
