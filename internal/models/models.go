package models

import (
	"time"
)

// TimeWindow фильтрует поездки по времени отправления
type TimeWindow string

const (
	WindowAll    TimeWindow = ""
	WindowFuture TimeWindow = "future"
	WindowPast   TimeWindow = "past"
)

// SortOrder - порядок сортировки по времени отправления
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchTripsRequest - параметры поиска рейсов между городами
type SearchTripsRequest struct {
	OriginCityID      int64
	DestinationCityID int64
	Date              string // YYYY-MM-DD
	Passengers        int
	Sort              SortOrder
}

// SearchTripsResponseItem - найденный рейс с доступными местами
type SearchTripsResponseItem struct {
	Trip           Trip   `json:"trip"`
	RemainingSeats int    `json:"remaining_seats"`
	TotalPrice     int64  `json:"total_price"`
	PriceDisplay   string `json:"price_display"`
}

// SearchTripsResponse - список найденных рейсов
type SearchTripsResponse []SearchTripsResponseItem

// BookTicketRequest - модель для покупки билета
type BookTicketRequest struct {
	TripID    int64  `json:"trip_id" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// ReturnTicketRequest - модель для возврата билета
type ReturnTicketRequest struct {
	TicketID int64 `json:"ticket_id" binding:"required"`
}

// ListTicketsFilter - фильтры списка билетов пользователя
type ListTicketsFilter struct {
	Window   TimeWindow
	Returned *bool
	Sort     SortOrder
}

// ListTripsFilter - фильтры списка рейсов партнёра
type ListTripsFilter struct {
	Window TimeWindow
	Sort   SortOrder
}

// CreateTripRequest - модель для создания/обновления рейса
type CreateTripRequest struct {
	Departure         time.Time `json:"departure" binding:"required"`
	Arrival           time.Time `json:"arrival" binding:"required"`
	Price             int64     `json:"price" binding:"required"`
	BusID             int64     `json:"bus_id" binding:"required"`
	DepartureStation  int64     `json:"departure_station_id" binding:"required"`
	ArrivalStation    int64     `json:"arrival_station_id" binding:"required"`
	OriginCityID      int64     `json:"origin_city_id" binding:"required"`
	DestinationCityID int64     `json:"destination_city_id" binding:"required"`
}

// CreateBusRequest - модель для регистрации автобуса
type CreateBusRequest struct {
	LicencePlate string `json:"licence_plate" binding:"required"`
	Seats        int    `json:"seats" binding:"required"`
	Brand        string `json:"brand"`
}

// UpdateBusRequest - модель для изменения автобуса
type UpdateBusRequest struct {
	Seats int    `json:"seats" binding:"required"`
	Brand string `json:"brand"`
}

// BusListItem - автобус со счётчиком рейсов для кабинета партнёра
type BusListItem struct {
	Bus
	TripCount int `json:"trip_count"`
}

// CreateCityRequest - модель для создания города
type CreateCityRequest struct {
	Name    string `json:"name" binding:"required"`
	Region  string `json:"region" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// CreateStationRequest - модель для создания станции
type CreateStationRequest struct {
	Name       string  `json:"name" binding:"required"`
	StreetType *string `json:"street_type"`
	Street     *string `json:"street"`
	Number     *string `json:"number"`
	CityID     int64   `json:"city_id" binding:"required"`
}

// RegisterUserRequest - модель регистрации пользователя
type RegisterUserRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	Surname   string `json:"surname" binding:"required"`
	Email     string `json:"email"`
}

// RegisterPartnerRequest - регистрация партнёра вместе с компанией
type RegisterPartnerRequest struct {
	RegisterUserRequest
	CompanyName string `json:"company_name" binding:"required"`
}

// GeoSuggestion - подсказка поиска городов и станций
type GeoSuggestion struct {
	Kind   string `json:"kind"` // city|station
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	CityID int64  `json:"city_id,omitempty"`
}
