package schema

const (
	OrdersName       = "orders"
	ReservationsName = "reservations"
)

// Steel order columns.
const (
	OrderID        = "OrderID"
	BatchID        = "BatchID"
	CustomerName   = "CustomerName"
	SteelGrade     = "SteelGrade"
	SteelType      = "SteelType"
	Thickness      = "Thickness"
	Width          = "Width"
	Length         = "Length"
	Weight         = "Weight"
	UnitPrice      = "UnitPrice"
	TotalPrice     = "TotalPrice"
	ProductionLine = "ProductionLine"
	Warehouse      = "Warehouse"
	QualityGrade   = "QualityGrade"
	OrderStatus    = "Status"
	OrderDate      = "OrderDate"
	ProductionDate = "ProductionDate"
	DeliveryDate   = "DeliveryDate"
	ContactEmail   = "ContactEmail"
	ContactPhone   = "ContactPhone"

	// Derived order fields.
	Volume     = "Volume"
	Density    = "Density"
	ValuePerKg = "ValuePerKg"
)

// Flight reservation columns.
const (
	PNR               = "PNR"
	Passenger         = "Passenger"
	Origin            = "Origin"
	Destination       = "Destination"
	Fare              = "Fare"
	ReservationStatus = "Status"
	BookingDate       = "BookingDate"
	TravelDate        = "TravelDate"
	Email             = "Email"
	Phone             = "Phone"
)

// Orders is the steel production order layout.
func Orders() Schema {
	return Schema{
		Name:             OrdersName,
		KeyField:         OrderID,
		DestinationField: ContactEmail,
		NameField:        CustomerName,
		Columns: []Column{
			{Name: OrderID, Kind: KindText},
			{Name: BatchID, Kind: KindText},
			{Name: CustomerName, Kind: KindText},
			{Name: SteelGrade, Kind: KindText},
			{Name: SteelType, Kind: KindText},
			{Name: Thickness, Kind: KindNumber},
			{Name: Width, Kind: KindNumber},
			{Name: Length, Kind: KindNumber},
			{Name: Weight, Kind: KindNumber},
			{Name: UnitPrice, Kind: KindMoney},
			{Name: TotalPrice, Kind: KindMoney},
			{Name: ProductionLine, Kind: KindText},
			{Name: Warehouse, Kind: KindText},
			{Name: QualityGrade, Kind: KindText},
			{Name: OrderStatus, Kind: KindText},
			{Name: OrderDate, Kind: KindDate},
			{Name: ProductionDate, Kind: KindDate},
			{Name: DeliveryDate, Kind: KindDate},
			{Name: ContactEmail, Kind: KindText},
			{Name: ContactPhone, Kind: KindText},
		},
		Derived: []Derivation{
			{
				// Dimensions are millimetres; volume is cubic metres.
				Name:   Volume,
				Inputs: []string{Thickness, Width, Length},
				Compute: func(in []float64) float64 {
					return in[0] * in[1] * in[2] / 1e9
				},
			},
			{
				Name:   Density,
				Inputs: []string{Weight, Thickness, Width, Length},
				Compute: func(in []float64) float64 {
					return in[0] / (in[1] * in[2] * in[3] / 1e9)
				},
			},
			{
				Name:   ValuePerKg,
				Inputs: []string{TotalPrice, Weight},
				Compute: func(in []float64) float64 {
					return in[0] / in[1]
				},
			},
		},
	}
}

// Reservations is the flight reservation layout.
func Reservations() Schema {
	return Schema{
		Name:             ReservationsName,
		KeyField:         PNR,
		DestinationField: Email,
		NameField:        Passenger,
		Columns: []Column{
			{Name: PNR, Kind: KindText},
			{Name: Passenger, Kind: KindText},
			{Name: Origin, Kind: KindText},
			{Name: Destination, Kind: KindText},
			{Name: Fare, Kind: KindMoney},
			{Name: ReservationStatus, Kind: KindText},
			{Name: BookingDate, Kind: KindDate},
			{Name: TravelDate, Kind: KindDate},
			{Name: Email, Kind: KindText},
			{Name: Phone, Kind: KindText},
		},
	}
}
