package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/tj/assert"

	mock "github.com/i474232898/cities-weather/internal/favorites/mock"
)

const device = "6f1c2a8e-9b7d-4c3e-a1f0-2d5b8e7c9a10"

var errTest = errors.New("test error")

func TestToggleFavoriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 0)

	for _, city := range []string{"Paris", "São Paulo", "Saint-Étienne"} {
		before, err := svc.IsFavorite(ctx, device, city)
		assert.NoError(t, err)
		assert.False(t, before)

		on, err := svc.ToggleFavorite(ctx, device, city)
		assert.NoError(t, err)
		assert.True(t, on)

		off, err := svc.ToggleFavorite(ctx, device, city)
		assert.NoError(t, err)
		assert.False(t, off)

		after, err := svc.IsFavorite(ctx, device, city)
		assert.NoError(t, err)
		assert.Equal(t, before, after)
	}

	favs, err := svc.ListFavorites(ctx, device)
	assert.NoError(t, err)
	assert.Empty(t, favs)
}

func TestToggleFavoriteKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 0)

	for _, c := range []string{"Paris", "Lyon", "Nice"} {
		_, err := svc.ToggleFavorite(ctx, device, c)
		assert.NoError(t, err)
	}
	_, err := svc.ToggleFavorite(ctx, device, "Lyon")
	assert.NoError(t, err)

	favs, err := svc.ListFavorites(ctx, device)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Nice"}, favs)
}

func TestRecordVisitAddsIfAbsent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 0)

	for _, c := range []string{"Paris", "Lyon", "Paris", "Nice", "Lyon"} {
		assert.NoError(t, svc.RecordVisit(ctx, device, c))
	}

	hist, err := svc.ListHistory(ctx, device)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Lyon", "Nice"}, hist)
}

func TestRecordVisitCap(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 2)

	for _, c := range []string{"Paris", "Lyon", "Nice"} {
		assert.NoError(t, svc.RecordVisit(ctx, device, c))
	}

	hist, err := svc.ListHistory(ctx, device)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Lyon", "Nice"}, hist)
}

func TestDevicesAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 0)

	_, err := svc.ToggleFavorite(ctx, device, "Paris")
	assert.NoError(t, err)

	other, err := svc.IsFavorite(ctx, "another-device", "Paris")
	assert.NoError(t, err)
	assert.False(t, other)
}

func TestInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 0)

	_, err := svc.ToggleFavorite(ctx, "", "Paris")
	assert.Equal(t, ErrInvalidInput, err)
	assert.Equal(t, ErrInvalidInput, svc.RecordVisit(ctx, device, " "))
	_, err = svc.ListHistory(ctx, "")
	assert.Equal(t, ErrInvalidInput, err)
}

func TestConcurrentTogglesAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryKV(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ToggleFavorite(ctx, device, fmt.Sprintf("City %02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	favs, err := svc.ListFavorites(ctx, device)
	assert.NoError(t, err)
	assert.Len(t, favs, 50)
	assert.Empty(t, svc.locks)
}

func TestServiceUsesNamespacedKeys(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	kv := mock.NewMockKV(ctrl)
	svc := NewService(kv, 0)

	gomock.InOrder(
		kv.EXPECT().Get(ctx, device+":favorites").Return([]string{"Lyon"}, nil),
		kv.EXPECT().Set(ctx, device+":favorites", []string{"Lyon", "Paris"}).Return(nil),
		kv.EXPECT().Get(ctx, device+":weatherHistory").Return(nil, nil),
		kv.EXPECT().Set(ctx, device+":weatherHistory", []string{"Paris"}).Return(nil),
	)

	on, err := svc.ToggleFavorite(ctx, device, "Paris")
	assert.NoError(t, err)
	assert.True(t, on)
	assert.NoError(t, svc.RecordVisit(ctx, device, "Paris"))
}

func TestServiceBackendErrors(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		expect func(kv *mock.MockKV)
		call   func(svc *Service) error
	}{
		{
			name: "toggle get",
			expect: func(kv *mock.MockKV) {
				kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errTest)
			},
			call: func(svc *Service) error {
				_, err := svc.ToggleFavorite(ctx, device, "Paris")
				return err
			},
		},
		{
			name: "toggle set",
			expect: func(kv *mock.MockKV) {
				kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]string{}, nil)
				kv.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errTest)
			},
			call: func(svc *Service) error {
				_, err := svc.ToggleFavorite(ctx, device, "Paris")
				return err
			},
		},
		{
			name: "history set",
			expect: func(kv *mock.MockKV) {
				kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]string{}, nil)
				kv.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errTest)
			},
			call: func(svc *Service) error {
				return svc.RecordVisit(ctx, device, "Paris")
			},
		},
		{
			name: "list",
			expect: func(kv *mock.MockKV) {
				kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errTest)
			},
			call: func(svc *Service) error {
				_, err := svc.ListFavorites(ctx, device)
				return err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			kv := mock.NewMockKV(ctrl)
			tc.expect(kv)

			err := tc.call(NewService(kv, 0))
			assert.True(t, errors.Is(err, errTest))
		})
	}
}

func TestRecordVisitSkipsWriteWhenPresent(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	kv := mock.NewMockKV(ctrl)

	kv.EXPECT().Get(ctx, device+":weatherHistory").Return([]string{"Paris"}, nil)

	assert.NoError(t, NewService(kv, 0).RecordVisit(ctx, device, "Paris"))
}
