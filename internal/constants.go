package internal

const ApplicationName = "openioc-db"
