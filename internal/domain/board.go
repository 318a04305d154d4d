package domain

type Board struct {
	Id          BoardId
	Name        BoardName
	Description string
	Position    int // display order among boards
}
