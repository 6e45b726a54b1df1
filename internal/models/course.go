// ABOUTME: Catalog records: courses and their instructors
// ABOUTME: Courses are random product records, instructors are random user records

package models

import "strings"

// Course is a catalog item. It is immutable once fetched.
type Course struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// PersonName is the structured name of an instructor
type PersonName struct {
	Title string `json:"title"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// Street is a street address line
type Street struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Timezone is an offset with a description
type Timezone struct {
	Offset      string `json:"offset"`
	Description string `json:"description"`
}

// Location is where an instructor lives.
// Postcode is numeric or textual depending on the country.
type Location struct {
	Street      Street       `json:"street"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	Postcode    any          `json:"postcode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Timezone    *Timezone    `json:"timezone,omitempty"`
}

// Login is the remote account handle of an instructor
type Login struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
}

// Dated is a date with a derived age in years
type Dated struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

// Picture holds instructor portrait URLs
type Picture struct {
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Thumbnail string `json:"thumbnail"`
}

// Instructor is the random user record paired with a course
type Instructor struct {
	ID         int        `json:"id"`
	Gender     string     `json:"gender"`
	Name       PersonName `json:"name"`
	Location   Location   `json:"location"`
	Email      string     `json:"email"`
	Login      Login      `json:"login"`
	DOB        Dated      `json:"dob"`
	Registered Dated      `json:"registered"`
	Picture    Picture    `json:"picture"`
	Phone      string     `json:"phone"`
	Cell       string     `json:"cell"`
	Nat        string     `json:"nat"`
}

// FullName returns "First Last", or the login username when the name is empty
func (i Instructor) FullName() string {
	name := strings.TrimSpace(i.Name.First + " " + i.Name.Last)
	if name == "" {
		return i.Login.Username
	}
	return name
}
