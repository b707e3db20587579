package models

type UserCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Message struct {
	Text  string `json:"text"`
	Error bool   `json:"error"`
}
