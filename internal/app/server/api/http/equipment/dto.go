package equipment

import (
	"equiploan/internal/app/client"
	"equiploan/internal/domain/movement"
)

type listInput struct {
	OnLoan bool `query:"on_loan" doc:"Только выданные единицы"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Total  int                       `json:"total" doc:"Количество единиц оборудования"`
	OnLoan int                       `json:"on_loan" doc:"Выдано единиц"`
	Items  []movement.EquipmentState `json:"items"`
}

type getInput struct {
	ID string `path:"id" example:"7" doc:"Номер единицы оборудования"`
}

type getOutput struct {
	Body movement.EquipmentState
}

type loanInput struct {
	ID   string `path:"id" example:"7" doc:"Номер единицы оборудования"`
	Body loanRequest
}

type loanRequest struct {
	Document  string `json:"document" example:"12345" doc:"Номер документа учащегося" minLength:"1"`
	Professor string `json:"professor,omitempty" doc:"Преподаватель"`
	Subject   string `json:"subject,omitempty" doc:"Предмет"`
}

type returnInput struct {
	ID   string `path:"id" example:"7" doc:"Номер единицы оборудования"`
	Body returnRequest
}

type returnRequest struct {
	Comment string `json:"comment,omitempty" doc:"Комментарий к возврату"`
}

type submitOutput struct {
	Body *client.SubmitResult
}
