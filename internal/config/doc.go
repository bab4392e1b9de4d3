// Package config loads readinglist configuration.
//
// Configuration is read once at startup from a single directory
// (default ~/.config/readinglist, or --config-path):
//
//	config.yaml   sections api, machineAuth, session, server
//	.env          optional KEY=value pairs
//
// Environment variables override both files:
//
//	SERVICEURL                 api.baseURL
//	CONSUMERKEY                machineAuth.consumerKey
//	CONSUMERSECRET             machineAuth.consumerSecret
//	TOKENURL                   machineAuth.tokenURL
//	CHOREOAPIKEY               machineAuth.apiKey
//	READINGLIST_DATABASE_URL   server.databaseURL
//	READINGLIST_STORAGE        server.storage
//
// ValidateConfig reports every problem at once as a
// ConfigurationErrorCollection.
package config
