package people

import "equiploan/internal/domain/movement"

type listOutput struct {
	Body []movement.Person
}

type findInput struct {
	Document string `path:"document" example:"12345" doc:"Номер документа учащегося"`
}

type findOutput struct {
	Body movement.Person
}
