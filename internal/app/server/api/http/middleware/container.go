package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

// Container - обертка над Middlewares с дополнительной функциональностью
type Container struct {
	huma.Middlewares
}

// NewContainer создает новый контейнер для мидлварей
func NewContainer() *Container {
	return &Container{
		Middlewares: make(huma.Middlewares, 0),
	}
}

// Add добавляет мидлвари в контейнер, nil пропускаются
func (mc *Container) Add(middlewares ...func(ctx huma.Context, next func(huma.Context))) {
	for _, m := range middlewares {
		if m != nil {
			mc.Middlewares = append(mc.Middlewares, m)
		}
	}
}

// GetAllAndClear возвращает все мидлвари и очищает внутренний список
func (mc *Container) GetAllAndClear() huma.Middlewares {
	result := mc.Middlewares
	mc.Middlewares = nil
	return result
}
