package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusFlow Timetable API",
        "description": "Course timetabling engine: automatic scheduling, conflict detection and schedule optimization",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedules", "description": "Automatic scheduling, validation and optimization"},
        {"name": "Reports", "description": "Schedule reports and exports"},
        {"name": "TimeSlots", "description": "Time slot availability"},
        {"name": "Classrooms", "description": "Classroom recommendations"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/schedules/auto": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Automatically place courses into classrooms and time slots",
                "responses": {
                    "200": {"description": "Scheduling result"}
                }
            }
        },
        "/schedules/validate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Check an existing schedule for conflicts",
                "responses": {
                    "200": {"description": "Validation result"}
                }
            }
        },
        "/schedules/optimize": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Repair conflicts in an existing schedule",
                "responses": {
                    "200": {"description": "Optimization result"}
                }
            }
        },
        "/schedules/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Schedule report of a semester",
                "responses": {
                    "200": {"description": "Report"}
                }
            }
        },
        "/downloads/exports": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download an archived export via a signed token",
                "responses": {
                    "200": {"description": "Export file"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "CampusFlow Timetable API",
	Description:      "Course timetabling engine",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
